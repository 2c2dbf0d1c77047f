package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	appconfig "github.com/fahimkhan-git/seher-ai-chat/internal/config"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// BuildLLMClient wires Gemini as the primary model with Bedrock as the
// fallback. It returns a nil client when neither is configured, in which
// case the assistant answers with keyword replies. The returned string is
// the model id requests should name.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, bedrock *bedrockruntime.Client, logger *logging.Logger) (assistant.LLMClient, string) {
	if cfg == nil {
		return nil, ""
	}
	if logger == nil {
		logger = logging.Default()
	}

	var fallback assistant.LLMClient
	bedrockModel := strings.TrimSpace(cfg.BedrockModelID)
	if bedrock != nil && bedrockModel != "" {
		fallback = assistant.NewBedrockLLMClient(bedrock, bedrockModel)
	}

	geminiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if geminiKey == "" {
		if fallback == nil {
			logger.Warn("no LLM configured; assistant will use keyword replies")
			return nil, ""
		}
		logger.Info("assistant using bedrock", "model", bedrockModel)
		return fallback, bedrockModel
	}

	primary, err := assistant.NewGeminiLLMClient(ctx, geminiKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn("gemini client unavailable", "error", err)
		if fallback == nil {
			return nil, ""
		}
		return fallback, bedrockModel
	}
	logger.Info("assistant using gemini", "model", cfg.GeminiModel, "bedrock_fallback", fallback != nil)
	if fallback == nil {
		return primary, cfg.GeminiModel
	}
	return assistant.NewFallbackLLMClient(primary, fallback, logger), cfg.GeminiModel
}
