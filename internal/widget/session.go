package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/observability/metrics"
	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

var (
	ErrEmptyInput         = errors.New("widget: empty input")
	ErrWrongMode          = errors.New("widget: action not available in current mode")
	ErrSubmissionInFlight = errors.New("widget: submission already in flight")
	ErrSubmitFailed       = errors.New("widget: lead submission failed")
	ErrUnknownCountry     = errors.New("widget: unknown country")

	errNoGateway   = errors.New("widget: no assistant configured")
	errNoSubmitter = errors.New("widget: no lead submitter configured")
)

// RetryMessage is shown when a lead could not be saved.
const RetryMessage = "Failed to submit. Please try again."

const defaultAITimeout = 20 * time.Second

// Submitter sends a captured lead to the CRM.
type Submitter interface {
	Submit(ctx context.Context, c submission.Capture) (submission.Result, error)
}

// Config describes one mounted widget.
type Config struct {
	SessionID    string
	ProjectID    string
	Microsite    string
	Theme        Theme
	PropertyInfo map[string]any
	Page         crm.PageContext
	// ContextWindow is how many recent messages go to the assistant.
	ContextWindow int
	AITimeout     time.Duration
}

// Outcome reports the result of one visitor action.
type Outcome struct {
	Mode     Mode
	Appended []conversation.Message
	// ValidationError is set when input was rejected. Nothing was appended
	// and the mode is unchanged.
	ValidationError error
}

// Session is the conversation state machine for one widget instance. It owns
// the transcript and is the only writer of its state. Methods are safe for
// concurrent use; assistant and CRM calls run without holding the lock.
type Session struct {
	cfg       Config
	theme     Theme
	gateway   assistant.Gateway
	submitter Submitter
	events    EventSink
	logger    *logging.Logger
	metrics   *metrics.WidgetMetrics
	now       func() time.Time

	log *conversation.Log

	mu             sync.Mutex
	state          State
	opened         bool
	countryTouched bool
	pendingAI      int
	submitting     bool
	visitor        submission.Visitor
}

// Option configures a Session.
type Option func(*Session)

func WithEventSink(sink EventSink) Option {
	return func(s *Session) {
		if sink != nil {
			s.events = sink
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.WidgetMetrics) Option {
	return func(s *Session) { s.metrics = m }
}

// NewSession returns a session in cta mode with an empty transcript.
func NewSession(cfg Config, gateway assistant.Gateway, submitter Submitter, opts ...Option) *Session {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = conversation.DefaultWindow
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = defaultAITimeout
	}
	s := &Session{
		cfg:       cfg,
		theme:     cfg.Theme.Merge(DefaultTheme()),
		gateway:   gateway,
		submitter: submitter,
		events:    discardSink{},
		logger:    logging.Default(),
		now:       time.Now,
		log:       conversation.NewLog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", cfg.SessionID, "project_id", cfg.ProjectID)
	s.state = State{
		SessionID:       cfg.SessionID,
		ProjectID:       cfg.ProjectID,
		Microsite:       cfg.Microsite,
		Mode:            ModeCTA,
		SelectedCountry: phone.Default(),
	}
	s.visitor = submission.Visitor{
		UTM:         cfg.Page.VisitorUTM(),
		LandingPage: cfg.Page.LandingPage(),
		Referrer:    cfg.Page.Referrer,
		UserAgent:   cfg.Page.UserAgent,
		FirstSeenAt: s.now().UTC(),
	}
	return s
}

func (s *Session) ID() string { return s.cfg.SessionID }

func (s *Session) Theme() Theme { return s.theme }

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Messages returns the transcript.
func (s *Session) Messages() []conversation.Message {
	return s.log.Messages()
}

// Typing reports whether an assistant reply is pending.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingAI > 0
}

// Submitting reports whether a lead submission is in flight.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Open shows the welcome message. Later calls are no-ops.
func (s *Session) Open(ctx context.Context) Outcome {
	s.mu.Lock()
	if s.opened {
		out := s.outcomeLocked(nil)
		s.mu.Unlock()
		return out
	}
	s.opened = true
	welcome := s.log.AppendSystem(s.theme.WelcomeMessage)
	out := s.outcomeLocked([]conversation.Message{welcome})
	s.mu.Unlock()

	s.track(ctx, EventChatShown, nil)
	return out
}

// SelectCTA handles a click on a CTA option.
func (s *Session) SelectCTA(ctx context.Context, label string) (Outcome, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return s.outcome(), ErrEmptyInput
	}
	s.mu.Lock()
	if s.state.Mode != ModeCTA {
		out := s.outcomeLocked(nil)
		s.mu.Unlock()
		return out, ErrWrongMode
	}
	appended := s.selectCTALocked(label, label)
	out := s.outcomeLocked(appended)
	s.mu.Unlock()

	s.track(ctx, EventCTASelected, map[string]any{"label": label})
	return out, nil
}

// SelectBHK handles a click on a configuration option.
func (s *Session) SelectBHK(ctx context.Context, label string) (Outcome, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return s.outcome(), ErrEmptyInput
	}
	s.mu.Lock()
	if s.state.Mode != ModeBHK {
		out := s.outcomeLocked(nil)
		s.mu.Unlock()
		return out, ErrWrongMode
	}
	appended := s.selectBHKLocked(label, label)
	out := s.outcomeLocked(appended)
	s.mu.Unlock()

	s.track(ctx, EventChatStarted, map[string]any{"bhkType": label})
	return out, nil
}

// SubmitText interprets free text against the current mode.
func (s *Session) SubmitText(ctx context.Context, text string) (Outcome, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return s.outcome(), ErrEmptyInput
	}

	s.mu.Lock()
	if s.submitting {
		out := s.outcomeLocked(nil)
		s.mu.Unlock()
		return out, ErrSubmissionInFlight
	}
	switch s.state.Mode {
	case ModeCTA:
		if option, ok := MatchCTA(trimmed, s.theme.CTAOptions); ok {
			appended := s.selectCTALocked(trimmed, option)
			out := s.outcomeLocked(appended)
			s.mu.Unlock()
			s.track(ctx, EventCTASelected, map[string]any{"label": option})
			return out, nil
		}
		return s.askLocked(ctx, trimmed, "pre_cta_ai")

	case ModeBHK:
		if option, ok := MatchBHK(trimmed, s.theme.BHKOptions); ok {
			appended := s.selectBHKLocked(trimmed, option)
			out := s.outcomeLocked(appended)
			s.mu.Unlock()
			s.track(ctx, EventChatStarted, map[string]any{"bhkType": option})
			return out, nil
		}
		return s.askLocked(ctx, trimmed, "pre_bhk_ai")

	case ModeName:
		if conversation.IsClearlyAQuestion(trimmed) {
			return s.askLocked(ctx, trimmed, "name_escape")
		}
		name, err := conversation.ValidateName(trimmed)
		if err != nil {
			out := s.outcomeLocked(nil)
			out.ValidationError = err
			s.mu.Unlock()
			return out, nil
		}
		appended := s.captureNameLocked(name)
		out := s.outcomeLocked(appended)
		s.mu.Unlock()
		return out, nil

	case ModePhone:
		if conversation.IsClearlyAQuestion(trimmed) {
			return s.askLocked(ctx, trimmed, "phone_escape")
		}
		res := phone.Normalize(trimmed, s.state.SelectedCountry)
		if !res.OK {
			out := s.outcomeLocked(nil)
			out.ValidationError = res.Err
			s.mu.Unlock()
			return out, nil
		}
		phoneMsg := conversation.NewMessage(conversation.KindUser, res.Display())
		capture := s.captureLocked(s.state.CapturedName, res, phoneMsg)
		return s.submitLocked(ctx, capture, []conversation.Message{phoneMsg}, "")

	default:
		return s.askLocked(ctx, trimmed, "chat")
	}
}

// SubmitLeadForm submits the combined name and phone form.
func (s *Session) SubmitLeadForm(ctx context.Context, name, rawPhone string) (Outcome, error) {
	s.mu.Lock()
	if s.state.Mode != ModeLeadForm {
		out := s.outcomeLocked(nil)
		s.mu.Unlock()
		return out, ErrWrongMode
	}
	if s.submitting {
		out := s.outcomeLocked(nil)
		s.mu.Unlock()
		return out, ErrSubmissionInFlight
	}
	validName, err := conversation.ValidateName(name)
	if err != nil {
		out := s.outcomeLocked(nil)
		out.ValidationError = err
		s.mu.Unlock()
		return out, nil
	}
	res := phone.Normalize(rawPhone, s.state.SelectedCountry)
	if !res.OK {
		out := s.outcomeLocked(nil)
		out.ValidationError = res.Err
		s.mu.Unlock()
		return out, nil
	}
	nameMsg := conversation.NewMessage(conversation.KindUser, validName)
	phoneMsg := conversation.NewMessage(conversation.KindUser, res.Display())
	capture := s.captureLocked(validName, res, nameMsg, phoneMsg)
	return s.submitLocked(ctx, capture, []conversation.Message{nameMsg, phoneMsg}, validName)
}

// SelectCountry changes the dial code used for phone input.
func (s *Session) SelectCountry(c phone.Country) (State, error) {
	if c.IsZero() {
		return s.State(), ErrUnknownCountry
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedCountry = c
	s.countryTouched = true
	return s.stateLocked(), nil
}

// ApplyVisitorLocation records the visitor location and preselects its
// country unless the visitor already picked one. It reports whether the
// country changed.
func (s *Session) ApplyVisitorLocation(loc crm.Location) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitor.Location = &loc
	if s.countryTouched || s.state.SelectedCountry != phone.Default() || loc.CallingCode == "" {
		return false
	}
	country, ok := phone.LookupISO(loc.CountryCode)
	if !ok || country.DialCode != loc.CallingCode {
		country, ok = phone.LookupDialCode(loc.CallingCode)
	}
	if !ok || country == s.state.SelectedCountry {
		return false
	}
	s.state.SelectedCountry = country
	return true
}

func (s *Session) selectCTALocked(typed, option string) []conversation.Message {
	s.state.SelectedCTA = option
	appended := []conversation.Message{
		s.log.AppendUser(typed),
		s.log.AppendSystem(s.theme.CTAAcknowledgement),
		s.log.AppendSystem(s.theme.BHKPrompt),
	}
	s.setModeLocked(ModeBHK, "cta")
	return appended
}

func (s *Session) selectBHKLocked(typed, option string) []conversation.Message {
	s.state.SelectedBHK = option
	appended := []conversation.Message{
		s.log.AppendUser(typed),
		s.log.AppendSystem(s.theme.InventoryMessage),
		s.log.AppendSystem(s.theme.NamePrompt),
	}
	s.setModeLocked(ModeName, "bhk")
	return appended
}

func (s *Session) captureNameLocked(name string) []conversation.Message {
	userMsg := s.log.AppendUser(name)
	s.state.NameSubmitted = true
	s.state.CapturedName = name
	s.setModeLocked(ModePhone, "name")
	return []conversation.Message{userMsg, s.log.AppendSystem(s.theme.phonePromptFor(name))}
}

// askLocked forwards text to the assistant. It must be called with s.mu
// held and returns with it released.
func (s *Session) askLocked(ctx context.Context, text, stage string) (Outcome, error) {
	history := s.historyLocked()
	userMsg := s.log.AppendUser(text)
	if s.state.Mode != ModeLeadForm {
		s.setModeLocked(ModeChat, stage)
	}
	req := assistant.Request{
		Message:         text,
		History:         history,
		PropertyContext: s.cfg.PropertyInfo,
		SelectedCTA:     s.state.SelectedCTA,
		SelectedBHK:     s.state.SelectedBHK,
		ProjectID:       s.cfg.ProjectID,
		Microsite:       s.cfg.Microsite,
	}
	before := s.capturedLocked()
	s.pendingAI++
	s.mu.Unlock()

	reply, err := s.reply(ctx, req)

	s.mu.Lock()
	s.pendingAI--
	aiAnswered := err == nil
	if err != nil {
		s.logger.Warn("assistant reply unavailable, using fallback", "error", err)
		s.metrics.ObserveAIReply("error")
		reply = assistant.Reply{Text: FallbackReply}
	}
	if reply.Text == "" {
		reply.Text = FallbackReply
	}
	sysMsg := s.log.AppendSystem(reply.Text)

	if s.capturedLocked() != before {
		s.logger.Info("discarding stale assistant mode switch", "stage", stage)
		s.metrics.ObserveAIReply("stale")
	} else {
		s.applyReplyLocked(reply)
	}
	out := s.outcomeLocked([]conversation.Message{userMsg, sysMsg})
	s.mu.Unlock()

	s.track(ctx, EventManualMessage, map[string]any{"stage": stage, "hasAiResponse": aiAnswered})
	return out, nil
}

// applyReplyLocked moves toward contact capture when the reply asks for it.
// A captured phone closes capture for the rest of the session.
func (s *Session) applyReplyLocked(reply assistant.Reply) {
	if s.state.PhoneSubmitted {
		return
	}
	if reply.RequestsLeadDetails() {
		s.setModeLocked(ModeLeadForm, "directive")
		return
	}
	if s.state.Mode != ModeChat {
		return
	}
	c := conversation.ClassifyReply(reply.Text)
	switch {
	case !c.WantsName && !c.WantsPhone:
		return
	case !s.state.NameSubmitted:
		s.setModeLocked(ModeName, "reply_pattern")
	case c.WantsPhone:
		s.setModeLocked(ModePhone, "reply_pattern")
	}
}

func (s *Session) reply(ctx context.Context, req assistant.Request) (assistant.Reply, error) {
	if s.gateway == nil {
		return assistant.Reply{}, errNoGateway
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	defer cancel()
	return s.gateway.Reply(ctx, req)
}

// submitLocked sends capture to the CRM. It must be called with s.mu held
// and returns with it released. pending messages are appended only on
// success.
func (s *Session) submitLocked(ctx context.Context, capture submission.Capture, pending []conversation.Message, formName string) (Outcome, error) {
	s.submitting = true
	s.mu.Unlock()

	result, err := s.submit(ctx, capture)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		out := s.outcomeLocked(nil)
		s.mu.Unlock()
		var verr *phone.ValidationError
		if errors.As(err, &verr) {
			out.ValidationError = verr
			return out, nil
		}
		s.logger.Warn("lead submission failed", "error", err)
		return out, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	appended := make([]conversation.Message, 0, len(pending)+1)
	for _, m := range pending {
		appended = append(appended, s.log.Append(m))
	}
	appended = append(appended, s.log.AppendSystem(s.theme.ThankYouMessage))
	if formName != "" {
		s.state.NameSubmitted = true
		s.state.CapturedName = formName
	}
	s.state.PhoneSubmitted = true
	if capture.Phone.CountryOverridden {
		s.state.SelectedCountry = capture.Phone.Country
	}
	s.setModeLocked(ModeChat, "lead_submitted")
	out := s.outcomeLocked(appended)
	s.mu.Unlock()

	s.track(ctx, EventLeadSubmitted, map[string]any{
		"trackingLeadId": result.Payload.TrackingLeadID,
		"bhkType":        capture.BHK,
		"phoneDialCode":  capture.Phone.DialCode,
	})
	return out, nil
}

func (s *Session) submit(ctx context.Context, c submission.Capture) (submission.Result, error) {
	if s.submitter == nil {
		return submission.Result{}, errNoSubmitter
	}
	return s.submitter.Submit(ctx, c)
}

func (s *Session) captureLocked(name string, res phone.Result, pending ...conversation.Message) submission.Capture {
	return submission.Capture{
		SessionID:    s.cfg.SessionID,
		Name:         name,
		Phone:        res,
		CTA:          s.state.SelectedCTA,
		BHK:          s.state.SelectedBHK,
		ProjectID:    s.cfg.ProjectID,
		Microsite:    s.cfg.Microsite,
		Page:         s.cfg.Page,
		Visitor:      s.visitor,
		Conversation: s.log.Snapshot(pending...),
	}
}

func (s *Session) historyLocked() []assistant.Turn {
	window := s.log.Window(s.cfg.ContextWindow)
	turns := make([]assistant.Turn, 0, len(window))
	for _, m := range window {
		role := assistant.RoleAssistant
		if m.Kind == conversation.KindUser {
			role = assistant.RoleUser
		}
		turns = append(turns, assistant.Turn{Role: role, Text: m.Text})
	}
	return turns
}

func (s *Session) capturedLocked() captured {
	return captured{nameSubmitted: s.state.NameSubmitted, phoneSubmitted: s.state.PhoneSubmitted}
}

func (s *Session) setModeLocked(to Mode, trigger string) {
	from := s.state.Mode
	if from == to {
		return
	}
	s.state.Mode = to
	s.metrics.ObserveTransition(string(from), string(to), trigger)
	s.logger.Debug("input mode changed", "from", from, "to", to, "trigger", trigger)
}

func (s *Session) stateLocked() State {
	st := s.state
	st.Typing = s.pendingAI > 0
	st.Submitting = s.submitting
	return st
}

func (s *Session) outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcomeLocked(nil)
}

func (s *Session) outcomeLocked(appended []conversation.Message) Outcome {
	return Outcome{Mode: s.state.Mode, Appended: appended}
}

func (s *Session) track(ctx context.Context, eventType string, payload map[string]any) {
	s.events.Track(ctx, Event{
		Type:      eventType,
		ProjectID: s.cfg.ProjectID,
		Microsite: s.cfg.Microsite,
		SessionID: s.cfg.SessionID,
		Payload:   payload,
	})
}
