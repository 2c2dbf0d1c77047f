package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/events"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// EventRecorder stores analytics events.
type EventRecorder interface {
	Record(ctx context.Context, e events.Event) (*events.Event, error)
}

// Publisher fans new leads out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, key string, body any) error
}

// Notifier tells the sales team about a new lead.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// Archiver keeps a durable copy of the lead transcript.
type Archiver interface {
	ArchiveLead(ctx context.Context, lead *Lead) error
}

// Broadcaster pushes live updates to dashboards watching a room.
type Broadcaster interface {
	Broadcast(room, event string, payload any)
}

// LeadCreatedKey is the routing key published for every new lead.
const LeadCreatedKey = "lead.created"

var validate = validator.New()

// Service creates and lists widget leads. Everything after the lead insert is
// best-effort: failures are logged and never fail the request.
type Service struct {
	repo        Repository
	sessions    SessionRepository
	events      EventRecorder
	publisher   Publisher
	notifier    Notifier
	archiver    Archiver
	broadcaster Broadcaster
	logger      *logging.Logger
	now         func() time.Time
	hookTimeout time.Duration
	wg          sync.WaitGroup
}

type Option func(*Service)

func WithSessions(repo SessionRepository) Option {
	return func(s *Service) { s.sessions = repo }
}

func WithEventRecorder(r EventRecorder) Option {
	return func(s *Service) { s.events = r }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) { s.broadcaster = b }
}

func NewService(repo Repository, logger *logging.Logger, opts ...Option) *Service {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:        repo,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		hookTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates, normalizes and stores a lead, then runs the follow-up
// hooks.
func (s *Service) Create(ctx context.Context, req CreateLeadRequest) (*Lead, error) {
	req.Microsite = strings.TrimSpace(req.Microsite)
	if err := validate.Struct(req); err != nil {
		return nil, ErrMissingMicrosite
	}
	pref, ok := NormalizeBHK(req.BHK, req.BHKType)
	if !ok {
		return nil, ErrInvalidBHK
	}

	now := s.now()
	lead := &Lead{
		ID:           uuid.NewString(),
		Phone:        strings.TrimSpace(req.Phone),
		BHK:          pref.Numeric,
		BHKType:      pref.Type,
		Microsite:    req.Microsite,
		LeadSource:   SourceChatWidget,
		Status:       StatusNew,
		Metadata:     req.Metadata,
		Conversation: req.Conversation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if lead.Metadata == nil {
		lead.Metadata = map[string]any{}
	}
	if lead.Conversation == nil {
		lead.Conversation = []conversation.Message{}
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	s.logger.Info("lead created", "lead_id", lead.ID, "microsite", lead.Microsite, "bhk_type", lead.BHKType)

	s.storeSession(ctx, lead)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(lead.Microsite, "lead:new", lead)
	}
	s.recordEvent(ctx, lead)
	s.runHooks(ctx, lead)
	return lead, nil
}

// RecordLead stores a lead captured by an in-process widget session.
func (s *Service) RecordLead(ctx context.Context, local submission.LocalLead) error {
	raw, err := json.Marshal(local.Metadata)
	if err != nil {
		return fmt.Errorf("leads: encode metadata: %w", err)
	}
	var metadata map[string]any
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return fmt.Errorf("leads: decode metadata: %w", err)
	}
	_, err = s.Create(ctx, CreateLeadRequest{
		Phone:        local.Phone,
		BHKType:      local.BHKType,
		Microsite:    local.Microsite,
		Metadata:     metadata,
		Conversation: local.Conversation,
	})
	return err
}

func (s *Service) List(ctx context.Context, filter ListFilter) (Page[*Lead], error) {
	return s.repo.List(ctx, filter)
}

// ListSessions returns stored chat sessions; empty when no session store is
// configured.
func (s *Service) ListSessions(ctx context.Context, filter SessionFilter) (Page[*ChatSession], error) {
	if s.sessions == nil {
		return Page[*ChatSession]{Items: []*ChatSession{}}, nil
	}
	return s.sessions.ListSessions(ctx, filter)
}

// Wait blocks until background hooks have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) storeSession(ctx context.Context, lead *Lead) {
	if s.sessions == nil {
		return
	}
	projectID, _ := lead.Metadata["projectId"].(string)
	if projectID == "" {
		projectID = lead.Microsite
	}
	session := &ChatSession{
		ID:           uuid.NewString(),
		Microsite:    lead.Microsite,
		ProjectID:    projectID,
		LeadID:       lead.ID,
		Phone:        lead.Phone,
		BHKType:      lead.BHKType,
		Conversation: lead.Conversation,
		Metadata:     lead.Metadata,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.CreatedAt,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		s.logger.Error("failed to store chat session", "lead_id", lead.ID, "error", err)
	}
}

func (s *Service) recordEvent(ctx context.Context, lead *Lead) {
	if s.events == nil {
		return
	}
	payload := map[string]any{"bhkType": lead.BHKType}
	if lead.BHK != nil {
		payload["bhk"] = *lead.BHK
	}
	_, err := s.events.Record(ctx, events.Event{
		Type:      events.TypeLeadSubmitted,
		ProjectID: lead.Microsite,
		Microsite: lead.Microsite,
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("failed to record lead event", "lead_id", lead.ID, "error", err)
	}
}

// runHooks publishes, notifies and archives in the background.
func (s *Service) runHooks(ctx context.Context, lead *Lead) {
	if s.publisher == nil && s.notifier == nil && s.archiver == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.hookTimeout)
		defer cancel()
		var errs []error
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, LeadCreatedKey, lead); err != nil {
				errs = append(errs, fmt.Errorf("publish: %w", err))
			}
		}
		if s.notifier != nil {
			if err := s.notifier.NotifyNewLead(ctx, lead); err != nil {
				errs = append(errs, fmt.Errorf("notify: %w", err))
			}
		}
		if s.archiver != nil {
			if err := s.archiver.ArchiveLead(ctx, lead); err != nil {
				errs = append(errs, fmt.Errorf("archive: %w", err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			s.logger.Warn("lead follow-up failed", "lead_id", lead.ID, "error", err)
		}
	}()
}
