package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"
)

const (
	defaultOpenAIChatModel  = "gpt-3.5-turbo"
	defaultOpenAIImageModel = "dall-e-2"
)

// shared HTTP client for OpenAI API calls
// image generation can take close to a minute
var openaiHTTPClient = &http.Client{
	Timeout: 90 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for OpenAI API calls (50 requests/second with burst capacity of 10)
var openaiRateLimiter = rate.NewLimiter(50, 10)

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string // e.g. "gpt-3.5-turbo"
	ImageModel string // e.g. "dall-e-2"
}

// serves chat completions and image generation through the OpenAI SDK
type OpenAIClient struct {
	config  OpenAIConfig
	client  openai.Client
	limiter *rate.Limiter
}

func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	if config.ChatModel == "" {
		config.ChatModel = defaultOpenAIChatModel
	}

	if config.ImageModel == "" {
		config.ImageModel = defaultOpenAIImageModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithHTTPClient(openaiHTTPClient),
		// failures surface to the caller, nothing is retried
		option.WithMaxRetries(0),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		config:  config,
		client:  openai.NewClient(opts...),
		limiter: openaiRateLimiter,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (*Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params = append(params, openai.SystemMessage(msg.Content))
		case RoleUser:
			params = append(params, openai.UserMessage(msg.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			return nil, fmt.Errorf("unsupported message role: %q", msg.Role)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.config.ChatModel),
		Messages: params,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &Message{
		Role:    RoleAssistant,
		Content: resp.Choices[0].Message.Content,
	}, nil
}

func (c *OpenAIClient) GenerateImages(ctx context.Context, req ImageRequest) ([]Image, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(c.config.ImageModel),
		N:              openai.Int(int64(req.Amount)),
		Size:           openai.ImageGenerateParamsSize(req.Resolution),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	images := make([]Image, 0, len(resp.Data))
	for _, img := range resp.Data {
		images = append(images, Image{URL: img.URL})
	}

	return images, nil
}
