package llm

import "context"

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// chat roles accepted by the providers
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// produces the next assistant message for a conversation
type ChatCompleter interface {
	Complete(ctx context.Context, messages []Message) (*Message, error)
}

// creates images from a text prompt
type ImageGenerator interface {
	GenerateImages(ctx context.Context, req ImageRequest) ([]Image, error)
}

type ImageRequest struct {
	Prompt     string
	Amount     int
	Resolution string // e.g. "512x512"
}

// a generated image as returned to clients
type Image struct {
	URL string `json:"url"`
}

// holds configuration for LLM initialization
type Config struct {
	// chat configuration
	ChatProvider Provider
	ChatModel    string // e.g. "gpt-3.5-turbo"

	// image configuration, always served by OpenAI
	ImageModel string // e.g. "dall-e-2"

	OpenAIAPIKey     string
	OpenAIBaseURL    string // optional, SDK default when empty
	AnthropicAPIKey  string
	AnthropicBaseURL string // optional

	// optional parameters
	MaxTokens   int     // anthropic requires an explicit cap
	Temperature float32 // anthropic only
}
