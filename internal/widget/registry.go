package widget

import (
	"sync"

	"github.com/fahimkhan-git/seher-ai-chat/internal/observability/metrics"
)

// Registry tracks mounted sessions by instance id. Each registry is
// independent, so tests and tenants can hold their own.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	metrics  *metrics.WidgetMetrics
}

func NewRegistry(m *metrics.WidgetMetrics) *Registry {
	return &Registry{sessions: make(map[string]*Session), metrics: m}
}

// Mount returns the session for id, creating it with newSession when it is
// not mounted yet. The bool is true when a session was created.
func (r *Registry) Mount(id string, newSession func() *Session) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s := newSession()
	r.sessions[id] = s
	r.metrics.SetActiveSessions(len(r.sessions))
	return s, true
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Unmount drops the session and its transcript.
func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	r.metrics.SetActiveSessions(len(r.sessions))
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
