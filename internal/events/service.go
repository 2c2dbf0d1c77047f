package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fahimkhan-git/seher-ai-chat/internal/observability/metrics"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// Publisher fans events out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, body any) error
}

var validate = validator.New()

// Service records widget analytics events.
type Service struct {
	store          Store
	publisher      Publisher
	metrics        *metrics.WidgetMetrics
	logger         *logging.Logger
	now            func() time.Time
	publishTimeout time.Duration
	wg             sync.WaitGroup
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.WidgetMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, logger *logging.Logger, opts ...Option) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		store:          store,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		publishTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record validates and stores an event. Publishing is best-effort.
func (s *Service) Record(ctx context.Context, e Event) (*Event, error) {
	e.Type = strings.TrimSpace(e.Type)
	e.ProjectID = strings.TrimSpace(e.ProjectID)
	if err := validate.Struct(e); err != nil {
		return nil, ErrInvalidEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if err := s.store.Record(ctx, &e); err != nil {
		return nil, fmt.Errorf("events: record %s: %w", e.Type, err)
	}
	s.metrics.ObserveEvent(e.Type)
	s.publish(ctx, &e)
	return &e, nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	return s.store.Summary(ctx)
}

// Track records a session event in the background.
func (s *Service) Track(ctx context.Context, ev widget.Event) {
	payload := make(map[string]any, len(ev.Payload)+1)
	for k, v := range ev.Payload {
		payload[k] = v
	}
	if ev.SessionID != "" {
		payload["sessionId"] = ev.SessionID
	}
	e := Event{
		Type:      ev.Type,
		ProjectID: ev.ProjectID,
		Microsite: ev.Microsite,
		Payload:   payload,
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Record(ctx, e); err != nil {
			s.logger.Warn("event tracking failed", "type", e.Type, "project_id", e.ProjectID, "error", err)
		}
	}()
}

// Wait blocks until background tracking has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) publish(ctx context.Context, e *Event) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, "event."+e.Type, e); err != nil {
		s.logger.Warn("event publish failed", "type", e.Type, "error", err)
	}
}

// IsInvalid reports whether err is a validation failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidEvent)
}
