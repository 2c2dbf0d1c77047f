package widget

import "context"

// Event types emitted by a session.
const (
	EventChatShown     = "chat_shown"
	EventCTASelected   = "cta_selected"
	EventChatStarted   = "chat_started"
	EventManualMessage = "manual_message"
	EventLeadSubmitted = "lead_submitted"
)

// Event is an analytics event about a session.
type Event struct {
	Type      string         `json:"type"`
	ProjectID string         `json:"projectId"`
	Microsite string         `json:"microsite,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// EventSink receives session events. Implementations must not block and
// must not fail the caller.
type EventSink interface {
	Track(ctx context.Context, event Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, event Event)

func (f EventSinkFunc) Track(ctx context.Context, event Event) { f(ctx, event) }

type discardSink struct{}

func (discardSink) Track(context.Context, Event) {}
