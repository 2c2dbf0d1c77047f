package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/observability/metrics"
	"github.com/fahimkhan-git/seher-ai-chat/internal/phone"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

var (
	// ErrInvalidPhone means the capture carried no normalized number.
	ErrInvalidPhone = errors.New("submission: phone not normalized")
	// ErrInvalidDomesticPhone is returned when a +91 number fails the final
	// shape check. No network call is made.
	ErrInvalidDomesticPhone = errors.New("submission: invalid domestic phone")
	// ErrCRMUnavailable wraps any CRM failure. The caller may retry.
	ErrCRMUnavailable = errors.New("submission: crm unavailable")
)

const defaultRecordTimeout = 10 * time.Second

// IPResolver returns the caller's public address or a placeholder.
type IPResolver interface {
	Lookup(ctx context.Context) string
}

// LeadRecorder stores the local analytics copy of a lead.
type LeadRecorder interface {
	RecordLead(ctx context.Context, lead LocalLead) error
}

// Pipeline submits captured leads to the CRM and records a local copy.
type Pipeline struct {
	crm      crm.Creator
	builder  *crm.Builder
	ip       IPResolver
	recorder LeadRecorder
	logger   *logging.Logger
	metrics  *metrics.WidgetMetrics
	now      func() time.Time

	recordTimeout time.Duration
	inflight      sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithIPResolver(r IPResolver) Option {
	return func(p *Pipeline) { p.ip = r }
}

func WithRecorder(r LeadRecorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func WithMetrics(m *metrics.WidgetMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithBuilder(b *crm.Builder) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.builder = b
		}
	}
}

// NewPipeline returns a pipeline sending leads to creator.
func NewPipeline(creator crm.Creator, logger *logging.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}
	p := &Pipeline{
		crm:           creator,
		builder:       crm.NewBuilder(),
		logger:        logger,
		now:           time.Now,
		recordTimeout: defaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit sends the lead to the CRM. On success the local analytics copy is
// recorded in the background and its outcome never reaches the caller.
func (p *Pipeline) Submit(ctx context.Context, c Capture) (Result, error) {
	if !c.Phone.OK {
		return Result{}, ErrInvalidPhone
	}
	if c.Phone.DialCode == phone.DomesticDialCode {
		if err := phone.ValidateDomestic(c.Phone.SubscriberDigits); err != nil {
			p.metrics.ObserveSubmission("rejected", 0)
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidDomesticPhone, err)
		}
	}

	clientIP := c.Page.ClientIP
	if clientIP == "" && p.ip != nil {
		clientIP = p.ip.Lookup(ctx)
	}

	payload := p.builder.Build(crm.Lead{
		Name:             c.Name,
		DialCode:         c.Phone.DialCode,
		SubscriberDigits: c.Phone.SubscriberDigits,
		Page:             c.Page,
		DefaultProjectID: c.ProjectID,
		ClientIP:         clientIP,
	})

	start := p.now()
	err := p.crm.CreateLead(ctx, payload)
	elapsed := p.now().Sub(start).Seconds()
	if err != nil {
		p.metrics.ObserveSubmission("failed", elapsed)
		p.logger.Warn("crm lead submission failed",
			"session_id", c.SessionID,
			"project_id", payload.ProjectID,
			"error", err,
		)
		return Result{}, fmt.Errorf("%w: %w", ErrCRMUnavailable, err)
	}
	p.metrics.ObserveSubmission("success", elapsed)
	p.logger.Info("crm lead submitted",
		"session_id", c.SessionID,
		"project_id", payload.ProjectID,
		"tracking_lead_id", payload.TrackingLeadID,
	)

	submittedAt := p.now().UTC()
	p.recordLocal(ctx, localLead(c, submittedAt))
	return Result{Payload: payload, SubmittedAt: submittedAt}, nil
}

func (p *Pipeline) recordLocal(ctx context.Context, lead LocalLead) {
	if p.recorder == nil {
		return
	}
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.recordTimeout)
		defer cancel()
		if err := p.recorder.RecordLead(recordCtx, lead); err != nil {
			p.logger.Warn("local lead record failed",
				"microsite", lead.Microsite,
				"error", err,
			)
		}
	}()
}

// Wait blocks until background local records have finished.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}
