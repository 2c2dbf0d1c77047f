package events

import (
	"context"
	"errors"
	"time"
)

// Widget event types counted by the summary.
const (
	TypeChatShown     = "chat_shown"
	TypeChatStarted   = "chat_started"
	TypeLeadSubmitted = "lead_submitted"
)

var (
	ErrInvalidEvent = errors.New("type and projectId required")
)

// Event is one recorded analytics event.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type" validate:"required"`
	ProjectID string         `json:"projectId" validate:"required"`
	Microsite string         `json:"microsite,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Summary is the funnel count shown on the dashboard.
type Summary struct {
	ChatsShown    int `json:"chatsShown"`
	ChatsStarted  int `json:"chatsStarted"`
	LeadsCaptured int `json:"leadsCaptured"`
}

func (s *Summary) add(eventType string, n int) {
	switch eventType {
	case TypeChatShown:
		s.ChatsShown += n
	case TypeChatStarted:
		s.ChatsStarted += n
	case TypeLeadSubmitted:
		s.LeadsCaptured += n
	}
}

// Store persists events.
type Store interface {
	Record(ctx context.Context, e *Event) error
	Summary(ctx context.Context) (Summary, error)
}
