package leads

import (
	"context"
	"sync"
)

const defaultPageSize = 50

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) (Page[*Lead], error)
}

// SessionRepository stores the chat transcript recorded with each lead.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *ChatSession) error
	ListSessions(ctx context.Context, filter SessionFilter) (Page[*ChatSession], error)
}

// InMemoryRepository keeps leads and chat sessions in process, newest first.
type InMemoryRepository struct {
	mu       sync.RWMutex
	leads    []*Lead
	sessions []*ChatSession
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(_ context.Context, lead *Lead) error {
	r.mu.Lock()
	r.leads = append([]*Lead{lead}, r.leads...)
	r.mu.Unlock()
	return nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, ErrLeadNotFound
}

func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) (Page[*Lead], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*Lead
	for _, l := range r.leads {
		if filter.matches(l) {
			matched = append(matched, l)
		}
	}
	return Page[*Lead]{Items: paginate(matched, filter.Skip, filter.Limit), Total: len(matched)}, nil
}

func (r *InMemoryRepository) CreateSession(_ context.Context, session *ChatSession) error {
	r.mu.Lock()
	r.sessions = append([]*ChatSession{session}, r.sessions...)
	r.mu.Unlock()
	return nil
}

func (r *InMemoryRepository) ListSessions(_ context.Context, filter SessionFilter) (Page[*ChatSession], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*ChatSession
	for _, s := range r.sessions {
		if filter.Microsite != "" && s.Microsite != filter.Microsite {
			continue
		}
		if filter.LeadID != "" && s.LeadID != filter.LeadID {
			continue
		}
		matched = append(matched, s)
	}
	return Page[*ChatSession]{Items: paginate(matched, filter.Skip, filter.Limit), Total: len(matched)}, nil
}

func paginate[T any](items []T, skip, limit int) []T {
	skip, limit = pageBounds(skip, limit)
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-skip)
	copy(out, items[skip:end])
	return out
}

func pageBounds(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	return skip, limit
}
