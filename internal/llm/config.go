package llm

import "codeberg.org/genius/server/internal/config"

// derives the LLM configuration from the server configuration
func ConfigFromServer(cfg *config.Config) *Config {
	return &Config{
		ChatProvider:    Provider(cfg.ChatProvider),
		ChatModel:       cfg.ChatModel,
		ImageModel:      cfg.ImageModel,
		OpenAIAPIKey:    cfg.OpenAIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		AnthropicAPIKey: cfg.AnthropicKey,
	}
}
