package assistant

import (
	"context"
	"errors"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// FallbackLLMClient asks the primary provider first and the fallback once
// when the primary fails. Replies never wait on a fallback after the
// caller's deadline has passed; the keyword responder covers that case.
type FallbackLLMClient struct {
	primary  LLMClient
	fallback LLMClient
	logger   *logging.Logger
}

// NewFallbackLLMClient chains two providers. fallback may be nil.
func NewFallbackLLMClient(primary, fallback LLMClient, logger *logging.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackLLMClient{primary: primary, fallback: fallback, logger: logger}
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	if c.fallback == nil || ctx.Err() != nil {
		c.logger.Warn("assistant llm failed",
			"model", req.Model,
			"error", err,
			"fallback_available", c.fallback != nil,
		)
		return LLMResponse{}, err
	}

	c.logger.Warn("assistant primary llm failed, trying fallback", "model", req.Model, "error", err)
	// Model ids are provider specific.
	req.Model = ""
	resp, fbErr := c.fallback.Complete(ctx, req)
	if fbErr != nil {
		c.logger.Error("assistant fallback llm failed", "error", fbErr)
		return LLMResponse{}, errors.Join(err, fbErr)
	}
	return resp, nil
}
