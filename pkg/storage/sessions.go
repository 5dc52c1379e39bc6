/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/auth"
)

// Sessions keeps per-visitor values in memory. Entries expire after ttl without
// access, which ends an idle dashboard session.
type Sessions struct {
	cache *ttlcache.Cache[string, string]
}

func NewSessions(ttl time.Duration) *Sessions {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](ttl),
	)
	go cache.Start()
	return &Sessions{cache: cache}
}

// ForSession returns the storage scope of a single visitor.
func (s *Sessions) ForSession(sessionID string) auth.Storage {
	return &sessionScope{cache: s.cache, prefix: sessionID + "\x00"}
}

// Len returns the number of live entries across all sessions.
func (s *Sessions) Len() int {
	return s.cache.Len()
}

// Close stops the expiry goroutine.
func (s *Sessions) Close() {
	s.cache.Stop()
}

type sessionScope struct {
	cache  *ttlcache.Cache[string, string]
	prefix string
}

func (s *sessionScope) Get(_ context.Context, key string) (string, bool, error) {
	item := s.cache.Get(s.prefix + key)
	if item == nil {
		return "", false, nil
	}
	return item.Value(), true, nil
}

func (s *sessionScope) Set(_ context.Context, key, value string) error {
	s.cache.Set(s.prefix+key, value, ttlcache.DefaultTTL)
	return nil
}

func (s *sessionScope) Remove(_ context.Context, key string) error {
	s.cache.Delete(s.prefix + key)
	return nil
}
