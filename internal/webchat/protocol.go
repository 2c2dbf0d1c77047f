package webchat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
)

// Visitor action types.
const (
	ActionOpen     = "open"
	ActionCTA      = "cta"
	ActionBHK      = "bhk"
	ActionText     = "text"
	ActionLeadForm = "leadForm"
	ActionCountry  = "country"
	ActionPing     = "ping"
)

// Server frame types.
const (
	FrameSession = "session"
	FrameState   = "state"
	FrameTyping  = "typing"
	FrameError   = "error"
	FramePong    = "pong"
)

var ErrUnknownAction = errors.New("webchat: unknown action")

// Action is one visitor interaction.
type Action struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	// Country is an ISO code; Value may carry a dial code instead.
	Country string `json:"country,omitempty"`
}

// Result is the state after an action plus the messages it appended.
type Result struct {
	State    widget.State           `json:"state"`
	Messages []conversation.Message `json:"messages"`
	// ValidationError is inline feedback for rejected input.
	ValidationError string `json:"validationError,omitempty"`
	// Error is shown to the visitor when an action failed.
	Error string `json:"error,omitempty"`
}

// Frame is a server to client websocket message.
type Frame struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"sessionId,omitempty"`
	State     *widget.State          `json:"state,omitempty"`
	Theme     *widget.Theme          `json:"theme,omitempty"`
	Countries []phone.Country        `json:"countries,omitempty"`
	Messages  []conversation.Message `json:"messages,omitempty"`
	Typing    *bool                  `json:"typing,omitempty"`
	Error     string                 `json:"error,omitempty"`
	// ValidationError mirrors Result.ValidationError on state frames.
	ValidationError string `json:"validationError,omitempty"`
}

func sessionFrame(s *widget.Session) Frame {
	state := s.State()
	theme := s.Theme()
	return Frame{
		Type:      FrameSession,
		SessionID: s.ID(),
		State:     &state,
		Theme:     &theme,
		Countries: phone.Countries(),
		Messages:  s.Messages(),
	}
}

func (r Result) frame() Frame {
	state := r.State
	return Frame{
		Type:            FrameState,
		SessionID:       state.SessionID,
		State:           &state,
		Messages:        r.Messages,
		Error:           r.Error,
		ValidationError: r.ValidationError,
	}
}

// Dispatch applies a to s and mirrors any appended messages.
func (m *Manager) Dispatch(ctx context.Context, s *widget.Session, a Action) (Result, error) {
	var (
		out widget.Outcome
		err error
	)
	switch a.Type {
	case ActionOpen:
		out = s.Open(ctx)
	case ActionCTA:
		out, err = s.SelectCTA(ctx, a.Value)
	case ActionBHK:
		out, err = s.SelectBHK(ctx, a.Value)
	case ActionText:
		out, err = s.SubmitText(ctx, a.Value)
	case ActionLeadForm:
		out, err = s.SubmitLeadForm(ctx, a.Name, a.Phone)
	case ActionCountry:
		country, ok := resolveCountry(a)
		if !ok {
			return Result{State: s.State(), Messages: []conversation.Message{}}, widget.ErrUnknownCountry
		}
		state, err := s.SelectCountry(country)
		return Result{State: state, Messages: []conversation.Message{}}, err
	default:
		return Result{State: s.State(), Messages: []conversation.Message{}}, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	m.Record(ctx, s.ID(), out.Appended)
	res := Result{State: s.State(), Messages: out.Appended}
	if res.Messages == nil {
		res.Messages = []conversation.Message{}
	}
	if out.ValidationError != nil {
		res.ValidationError = out.ValidationError.Error()
	}
	if errors.Is(err, widget.ErrSubmitFailed) {
		res.Error = widget.RetryMessage
	}
	return res, err
}

func resolveCountry(a Action) (phone.Country, bool) {
	if iso := strings.TrimSpace(a.Country); iso != "" {
		return phone.LookupISO(iso)
	}
	return phone.LookupDialCode(strings.TrimSpace(a.Value))
}

// statusFor maps a dispatch error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, widget.ErrEmptyInput),
		errors.Is(err, widget.ErrUnknownCountry),
		errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, widget.ErrWrongMode),
		errors.Is(err, widget.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, widget.ErrSubmitFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
