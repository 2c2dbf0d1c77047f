package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/observability/metrics"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widgetconfig"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

var (
	ErrMissingProject  = errors.New("webchat: project is required")
	ErrSessionNotFound = errors.New("webchat: session not found")
)

// ConfigSource loads the per-project widget config.
type ConfigSource interface {
	Get(ctx context.Context, projectID string) (*widgetconfig.Config, error)
}

// Locator resolves a visitor IP to a location.
type Locator interface {
	Locate(ctx context.Context, ip string) (crm.Location, error)
}

// TranscriptStore mirrors session messages outside the process.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, msg conversation.Message) error
	List(ctx context.Context, sessionID string, limit int64) ([]conversation.Message, error)
}

// MountRequest describes the page a widget is mounted on.
type MountRequest struct {
	SessionID       string            `json:"sessionId"`
	ProjectID       string            `json:"projectId"`
	Microsite       string            `json:"microsite"`
	PageURL         string            `json:"pageUrl"`
	ScriptProjectID string            `json:"scriptProjectId"`
	Referrer        string            `json:"referrer"`
	SessionUTM      map[string]string `json:"sessionUtm"`
	UserAgent       string            `json:"-"`
	ClientIP        string            `json:"-"`
}

// Manager mounts widget sessions and wires them to the shared services.
type Manager struct {
	registry      *widget.Registry
	configs       ConfigSource
	gateway       assistant.Gateway
	submitter     widget.Submitter
	events        widget.EventSink
	locator       Locator
	transcript    TranscriptStore
	metrics       *metrics.WidgetMetrics
	logger        *logging.Logger
	contextWindow int
	aiTimeout     time.Duration
	locateTimeout time.Duration
	now           func() time.Time
	wg            sync.WaitGroup

	seenMu sync.Mutex
	seen   map[string]time.Time
}

type ManagerOption func(*Manager)

func WithConfigSource(src ConfigSource) ManagerOption {
	return func(m *Manager) { m.configs = src }
}

func WithEventSink(sink widget.EventSink) ManagerOption {
	return func(m *Manager) { m.events = sink }
}

func WithLocator(l Locator) ManagerOption {
	return func(m *Manager) { m.locator = l }
}

func WithTranscriptStore(store TranscriptStore) ManagerOption {
	return func(m *Manager) { m.transcript = store }
}

func WithMetrics(mx *metrics.WidgetMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = mx }
}

func WithLogger(logger *logging.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithSessionTuning sets the assistant context window and timeout.
func WithSessionTuning(contextWindow int, aiTimeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.contextWindow = contextWindow
		m.aiTimeout = aiTimeout
	}
}

func NewManager(registry *widget.Registry, gateway assistant.Gateway, submitter widget.Submitter, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:      registry,
		gateway:       gateway,
		submitter:     submitter,
		locateTimeout: 3 * time.Second,
		now:           time.Now,
		seen:          make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Default()
	}
	if m.registry == nil {
		m.registry = widget.NewRegistry(m.metrics)
	}
	return m
}

// Mount returns the session for req.SessionID, creating it when needed. The
// bool reports whether a new session was created.
func (m *Manager) Mount(ctx context.Context, req MountRequest) (*widget.Session, bool, error) {
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if req.ProjectID == "" {
		return nil, false, ErrMissingProject
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}
	if s, ok := m.registry.Get(req.SessionID); ok {
		m.touch(req.SessionID)
		return s, false, nil
	}

	theme := widget.DefaultTheme()
	var propertyInfo map[string]any
	if m.configs != nil {
		cfg, err := m.configs.Get(ctx, req.ProjectID)
		if err != nil {
			m.logger.Warn("widget config unavailable, using defaults", "project_id", req.ProjectID, "error", err)
		} else {
			theme = cfg.Theme()
			propertyInfo = cfg.PropertyInfo
		}
	}

	cfg := widget.Config{
		SessionID:    req.SessionID,
		ProjectID:    req.ProjectID,
		Microsite:    req.Microsite,
		Theme:        theme,
		PropertyInfo: propertyInfo,
		Page: crm.PageContext{
			URL:             req.PageURL,
			ScriptProjectID: req.ScriptProjectID,
			UserAgent:       req.UserAgent,
			Referrer:        req.Referrer,
			SessionUTM:      req.SessionUTM,
			ClientIP:        req.ClientIP,
		},
		ContextWindow: m.contextWindow,
		AITimeout:     m.aiTimeout,
	}
	opts := []widget.Option{widget.WithLogger(m.logger), widget.WithMetrics(m.metrics)}
	if m.events != nil {
		opts = append(opts, widget.WithEventSink(m.events))
	}
	s, created := m.registry.Mount(req.SessionID, func() *widget.Session {
		return widget.NewSession(cfg, m.gateway, m.submitter, opts...)
	})
	m.touch(req.SessionID)
	if created {
		m.logger.Info("widget session mounted", "session_id", req.SessionID, "project_id", req.ProjectID)
		m.locate(ctx, s, req.ClientIP)
	}
	return s, created, nil
}

func (m *Manager) Get(sessionID string) (*widget.Session, error) {
	s, ok := m.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	m.touch(sessionID)
	return s, nil
}

func (m *Manager) Unmount(sessionID string) bool {
	m.seenMu.Lock()
	delete(m.seen, sessionID)
	m.seenMu.Unlock()
	return m.registry.Unmount(sessionID)
}

// Sweep unmounts sessions untouched for longer than idle and returns how
// many were dropped.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	var stale []string
	m.seenMu.Lock()
	for id, at := range m.seen {
		if at.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.seenMu.Unlock()

	dropped := 0
	for _, id := range stale {
		if m.Unmount(id) {
			dropped++
		}
	}
	if dropped > 0 {
		m.logger.Debug("unmounted idle widget sessions", "count", dropped)
	}
	return dropped
}

// Run sweeps idle sessions every interval until done is closed.
func (m *Manager) Run(done <-chan struct{}, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.Sweep(idle)
		}
	}
}

func (m *Manager) touch(sessionID string) {
	m.seenMu.Lock()
	m.seen[sessionID] = m.now()
	m.seenMu.Unlock()
}

// Record mirrors appended messages to the transcript store.
func (m *Manager) Record(ctx context.Context, sessionID string, msgs []conversation.Message) {
	if m.transcript == nil {
		return
	}
	for _, msg := range msgs {
		if err := m.transcript.Append(ctx, sessionID, msg); err != nil {
			m.logger.Warn("transcript mirror failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

// History prefers the live session and falls back to the transcript store.
func (m *Manager) History(ctx context.Context, sessionID string, limit int64) ([]conversation.Message, error) {
	if s, ok := m.registry.Get(sessionID); ok {
		msgs := s.Messages()
		if limit > 0 && int64(len(msgs)) > limit {
			msgs = msgs[int64(len(msgs))-limit:]
		}
		return msgs, nil
	}
	if m.transcript == nil {
		return []conversation.Message{}, nil
	}
	return m.transcript.List(ctx, sessionID, limit)
}

// Wait blocks until background lookups finish.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) locate(ctx context.Context, s *widget.Session, ip string) {
	if m.locator == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, m.locateTimeout)
		defer cancel()
		loc, err := m.locator.Locate(ctx, ip)
		if err != nil {
			m.logger.Debug("visitor location lookup failed", "session_id", s.ID(), "error", err)
			return
		}
		if s.ApplyVisitorLocation(loc) {
			m.logger.Debug("preselected visitor country", "session_id", s.ID(), "country", loc.CountryCode)
		}
	}()
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}
