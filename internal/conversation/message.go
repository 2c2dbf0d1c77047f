package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies who authored a message.
type Kind string

const (
	KindSystem Kind = "system"
	KindUser   Kind = "user"
)

// Message is a single transcript entry. It is never modified once appended.
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with a fresh id and the current time.
func NewMessage(kind Kind, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// DefaultWindow is the number of recent messages sent as AI context.
const DefaultWindow = 10

// Log is the ordered, append-only transcript of one widget session.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog returns an empty transcript.
func NewLog() *Log {
	return &Log{}
}

// Append adds m to the end of the transcript.
func (l *Log) Append(m Message) Message {
	l.mu.Lock()
	l.messages = append(l.messages, m)
	l.mu.Unlock()
	return m
}

// AppendSystem appends a system-authored message.
func (l *Log) AppendSystem(text string) Message {
	return l.Append(NewMessage(KindSystem, text))
}

// AppendUser appends a user-authored message.
func (l *Log) AppendUser(text string) Message {
	return l.Append(NewMessage(KindUser, text))
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Messages returns a copy of the full transcript.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Window returns a copy of the most recent n messages.
func (l *Log) Window(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return []Message{}
	}
	start := len(l.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(l.messages)-start)
	copy(out, l.messages[start:])
	return out
}

// Snapshot returns the transcript plus any pending messages that are about to
// be appended, for inclusion in a lead payload.
func (l *Log) Snapshot(pending ...Message) []Message {
	out := l.Messages()
	return append(out, pending...)
}
