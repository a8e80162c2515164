package llm

import (
	"fmt"
)

// combines a ChatCompleter and an ImageGenerator into a single client
type CompositeLLM struct {
	ChatCompleter
	ImageGenerator
}

// creates the clients for the configured providers
func NewLLMWithConfig(config *Config) (*CompositeLLM, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	openaiClient := NewOpenAIClient(OpenAIConfig{
		APIKey:     config.OpenAIAPIKey,
		BaseURL:    config.OpenAIBaseURL,
		ChatModel:  config.ChatModel,
		ImageModel: config.ImageModel,
	})

	var chat ChatCompleter

	switch config.ChatProvider {
	case ProviderOpenAI, "":
		chat = openaiClient
	case ProviderAnthropic:
		if config.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic api key is required")
		}

		chat = NewAnthropicChat(AnthropicConfig{
			APIKey:      config.AnthropicAPIKey,
			BaseURL:     config.AnthropicBaseURL,
			Model:       config.ChatModel,
			MaxTokens:   config.MaxTokens,
			Temperature: config.Temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", config.ChatProvider)
	}

	return &CompositeLLM{
		ChatCompleter:  chat,
		ImageGenerator: openaiClient,
	}, nil
}
