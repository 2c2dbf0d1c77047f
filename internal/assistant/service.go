package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/fahimkhan-git/seher-ai-chat/internal/observability/metrics"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

var ErrEmptyMessage = errors.New("assistant: message is required")

// PropertySource looks up the configured agent name and property facts for
// a project.
type PropertySource interface {
	Property(ctx context.Context, projectID string) (agentName string, info map[string]any, err error)
}

// Result is a Reply plus how it was produced.
type Result struct {
	Reply
	AIUsed   bool
	Fallback bool
	Model    string
}

// Wire renders the result as the chat endpoint body.
func (r Result) Wire() WireResponse {
	return WireResponse{
		Response: r.Text,
		Action:   string(r.Directive),
		AIUsed:   r.AIUsed,
		Fallback: r.Fallback,
		Model:    r.Model,
	}
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

func WithPropertySource(src PropertySource) ServiceOption {
	return func(s *Service) { s.properties = src }
}

func WithMetrics(m *metrics.WidgetMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithGeneration(maxTokens int32, temperature float32) ServiceOption {
	return func(s *Service) {
		s.maxTokens = maxTokens
		s.temperature = temperature
	}
}

// Service answers visitor messages with an LLM, degrading to keyword
// matching when no model is configured or the model call fails.
type Service struct {
	llm         LLMClient
	model       string
	properties  PropertySource
	metrics     *metrics.WidgetMetrics
	logger      *logging.Logger
	maxTokens   int32
	temperature float32
}

// NewService builds a Service. llm may be nil.
func NewService(llm LLMClient, model string, logger *logging.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		llm:         llm,
		model:       model,
		logger:      logger,
		maxTokens:   256,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond produces an assistant reply for req.
func (s *Service) Respond(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Result{}, ErrEmptyMessage
	}

	agentName, info := s.resolveProperty(ctx, req)
	keyword := KeywordResponder{AgentName: agentName}

	if s.llm == nil {
		s.metrics.ObserveAIReply("fallback")
		return Result{
			Reply:    Reply{Text: keyword.Respond(req.Message, req.History, info)},
			Fallback: true,
		}, nil
	}

	resp, err := s.llm.Complete(ctx, LLMRequest{
		Model:       s.model,
		System:      []string{BuildSystemPrompt(agentName, info, req)},
		Messages:    BuildMessages(req),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		s.logger.Warn("assistant llm unavailable, using keyword reply",
			"project_id", req.ProjectID,
			"error", err,
		)
		s.metrics.ObserveAIReply("fallback")
		return Result{
			Reply:    Reply{Text: keyword.Respond(req.Message, req.History, info)},
			Fallback: true,
		}, nil
	}

	s.metrics.ObserveAIReply("ai")
	s.logger.Debug("assistant reply generated",
		"project_id", req.ProjectID,
		"provider", resp.Provider,
		"model", resp.Model,
		"output_tokens", resp.Usage.OutputTokens,
	)
	model := resp.Model
	if model == "" {
		model = s.model
	}
	return Result{
		Reply:  ParseModelOutput(resp.Text),
		AIUsed: true,
		Model:  model,
	}, nil
}

// Reply implements Gateway for in-process widget sessions.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	res, err := s.Respond(ctx, req)
	if err != nil {
		return Reply{}, err
	}
	return res.Reply, nil
}

// resolveProperty prefers the property context sent by the widget and falls
// back to the stored widget config.
func (s *Service) resolveProperty(ctx context.Context, req Request) (string, PropertyInfo) {
	agentName := ""
	raw := req.PropertyContext
	if s.properties != nil && req.ProjectID != "" {
		name, stored, err := s.properties.Property(ctx, req.ProjectID)
		if err != nil {
			s.logger.Warn("assistant: property lookup failed", "project_id", req.ProjectID, "error", err)
		} else {
			agentName = name
			if len(raw) == 0 {
				raw = stored
			}
		}
	}
	return agentName, DecodePropertyInfo(raw)
}
