package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	anthropicBaseURL     = "https://api.anthropic.com"
	anthropicVersion     = "2023-06-01"
	defaultAnthropicChat = "claude-3-haiku-20240307"
	defaultMaxTokens     = 1024
	defaultTemperature   = 0.7
)

// shared HTTP client for Anthropic API calls
var anthropicHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// rate limiter for Anthropic API calls (50 requests/second with burst capacity of 10)
var anthropicRateLimiter = rate.NewLimiter(50, 10)

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []content `json:"content"`
	Model   string    `json:"model"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string  // e.g., "claude-3-haiku-20240307"
	MaxTokens   int     // max tokens for response
	Temperature float32 // 0.0 to 1.0
}

// serves chat completions through the Anthropic messages API
type AnthropicChat struct {
	config     AnthropicConfig
	httpClient *http.Client
}

func NewAnthropicChat(config AnthropicConfig) *AnthropicChat {
	if config.BaseURL == "" {
		config.BaseURL = anthropicBaseURL
	}

	if config.Model == "" || strings.HasPrefix(config.Model, "gpt-") {
		config.Model = defaultAnthropicChat
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	return &AnthropicChat{
		config:     config,
		httpClient: anthropicHTTPClient,
	}
}

func (a *AnthropicChat) Model() string {
	return a.config.Model
}

// system turns are lifted into the top-level system prompt since the
// messages API only accepts user and assistant roles
func (a *AnthropicChat) Complete(ctx context.Context, messages []Message) (*Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	var system []string
	turns := make([]message, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleUser, RoleAssistant:
			turns = append(turns, message(msg))
		default:
			return nil, fmt.Errorf("unsupported message role: %q", msg.Role)
		}
	}

	if len(turns) == 0 {
		return nil, fmt.Errorf("at least one user message is required")
	}

	reqBody := messagesRequest{
		Model:       a.config.Model,
		MaxTokens:   a.config.MaxTokens,
		System:      strings.Join(system, "\n\n"),
		Temperature: a.config.Temperature,
		Messages:    turns,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	// rate limiting
	if err := anthropicRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	return &Message{
		Role:    RoleAssistant,
		Content: strings.TrimSpace(text.String()),
	}, nil
}
