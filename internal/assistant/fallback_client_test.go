package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

func TestFallbackLLMClient(t *testing.T) {
	primary := &stubLLM{err: errors.New("primary down")}
	fallback := &stubLLM{resp: LLMResponse{Text: "from fallback"}}
	c := NewFallbackLLMClient(primary, fallback, logging.Discard())

	resp, err := c.Complete(context.Background(), LLMRequest{Model: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", resp.Text)
	assert.Equal(t, "gemini", primary.got.Model)
	assert.Empty(t, fallback.got.Model)
}

func TestFallbackLLMClient_PrimarySucceeds(t *testing.T) {
	primary := &stubLLM{resp: LLMResponse{Text: "primary"}}
	fallback := &stubLLM{resp: LLMResponse{Text: "fallback"}}
	resp, err := NewFallbackLLMClient(primary, fallback, nil).Complete(context.Background(), LLMRequest{})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
}

func TestFallbackLLMClient_NoFallback(t *testing.T) {
	primary := &stubLLM{err: errors.New("down")}
	_, err := NewFallbackLLMClient(primary, nil, logging.Discard()).Complete(context.Background(), LLMRequest{})
	assert.EqualError(t, err, "down")
}

func TestFallbackLLMClient_BothFail(t *testing.T) {
	primaryErr := errors.New("gemini quota")
	fallbackErr := errors.New("bedrock throttled")
	c := NewFallbackLLMClient(&stubLLM{err: primaryErr}, &stubLLM{err: fallbackErr}, logging.Discard())

	_, err := c.Complete(context.Background(), LLMRequest{})
	assert.ErrorIs(t, err, primaryErr)
	assert.ErrorIs(t, err, fallbackErr)
}

func TestFallbackLLMClient_SkipsFallbackAfterDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := LLMClientFunc(func(context.Context, LLMRequest) (LLMResponse, error) {
		cancel()
		return LLMResponse{}, context.Canceled
	})
	called := false
	fallback := LLMClientFunc(func(context.Context, LLMRequest) (LLMResponse, error) {
		called = true
		return LLMResponse{Text: "late"}, nil
	})

	_, err := NewFallbackLLMClient(primary, fallback, logging.Discard()).Complete(ctx, LLMRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
