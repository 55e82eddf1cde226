package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/config"
)

// NewFromConfig builds the LanguageModel selected by LLM_PROVIDER
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (repositories.LanguageModel, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiLLM(ctx, GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger.Named("gemini"))
	case config.ProviderOpenAI, "":
		return NewOpenAILLM(OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger.Named("openai"))
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
