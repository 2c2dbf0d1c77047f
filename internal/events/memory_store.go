package events

import (
	"context"
	"sync"
)

// MemoryStore keeps events in process, newest first.
type MemoryStore struct {
	mu     sync.RWMutex
	events []*Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, e *Event) error {
	s.mu.Lock()
	s.events = append([]*Event{e}, s.events...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Summary(context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out Summary
	for _, e := range s.events {
		out.add(e.Type, 1)
	}
	return out, nil
}

// Events returns a copy of the recorded events, newest first.
func (s *MemoryStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, *e)
	}
	return out
}
