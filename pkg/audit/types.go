// SPDX-FileCopyrightText: 2024 Deutsche Telekom AG
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventLoginStarted   EventType = "login.started"
	EventLoginCompleted EventType = "login.completed"
	EventLoginFailed    EventType = "login.failed"
	EventLogout         EventType = "logout"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Actor identifies who triggered the event. User is only known once a login
// completed; before that the session prefix and source address are all there is.
type Actor struct {
	User      string `json:"user,omitempty"`
	Session   string `json:"session,omitempty"`
	SourceIP  string `json:"sourceIP,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Severity  Severity       `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Actor     Actor          `json:"actor"`
	RequestID string         `json:"requestID,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewEvent stamps a new event. Failed logins are warnings, everything else info.
func NewEvent(eventType EventType, source string, actor Actor) *Event {
	severity := SeverityInfo
	if eventType == EventLoginFailed {
		severity = SeverityWarning
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
		Source:    source,
		Actor:     actor,
	}
}

// WithDetail sets one detail value and returns the event for chaining.
func (e *Event) WithDetail(key string, value any) *Event {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}
