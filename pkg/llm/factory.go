package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/config"
)

// NewChatClient builds the configured provider's client. Returns ChatClient
// so callers stay decoupled from the concrete implementation.
func NewChatClient(cfg *config.LLMConfig, logger *zap.Logger) (ChatClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(&OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, logger)
	case config.ProviderAnthropic:
		return NewAnthropicClient(&AnthropicConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
