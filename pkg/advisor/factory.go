package advisor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"garden/config"
)

// FromConfig prefers Gemini, then an OpenAI-compatible endpoint, and falls
// back to the mock planner when neither has credentials.
func FromConfig(ctx context.Context, cfg config.AppConfig, l *zap.Logger) (Client, error) {
	switch {
	case cfg.GeminiAPIKey != "":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, l)
	case cfg.LLMEndpoint != "" && cfg.LLMAPIKey != "":
		return NewOpenAI(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, nil, l), nil
	}
	return NewMock(time.Now), nil
}
