package audit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// mockSink records events and can simulate failures or a slow destination.
type mockSink struct {
	name       string
	mu         sync.Mutex
	events     []*Event
	alwaysFail bool
	writeDelay time.Duration
	block      chan struct{}
	closed     bool
}

func newMockSink(name string) *mockSink {
	return &mockSink{name: name}
}

func (s *mockSink) Write(_ context.Context, event *Event) error {
	if s.block != nil {
		<-s.block
	}
	if s.writeDelay > 0 {
		time.Sleep(s.writeDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alwaysFail {
		return errors.New("simulated failure")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *mockSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *mockSink) Name() string { return s.name }

func (s *mockSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *mockSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
