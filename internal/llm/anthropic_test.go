package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicChat_Complete(t *testing.T) {
	var got messagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "  ` + "```go\\nfmt.Println(1)\\n```" + `  "}],
			"model": "claude-3-haiku-20240307",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	chat := NewAnthropicChat(AnthropicConfig{APIKey: "key", BaseURL: server.URL, Model: "gpt-3.5-turbo"})
	assert.Equal(t, defaultAnthropicChat, chat.Model(), "openai model names fall back to the default")

	msg, err := chat.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a code generator."},
		{Role: RoleUser, Content: "print one"},
	})
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "```go\nfmt.Println(1)\n```", msg.Content)

	assert.Equal(t, "You are a code generator.", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
}

func TestAnthropicChat_Complete_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error"}`))
	}))
	defer server.Close()

	chat := NewAnthropicChat(AnthropicConfig{APIKey: "key", BaseURL: server.URL})

	_, err := chat.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = chat.Complete(context.Background(), []Message{{Role: RoleSystem, Content: "only system"}})
	assert.Error(t, err)

	_, err = chat.Complete(context.Background(), []Message{{Role: "function", Content: "x"}})
	assert.Error(t, err)
}

func TestNewLLMWithConfig(t *testing.T) {
	_, err := NewLLMWithConfig(nil)
	assert.Error(t, err)

	_, err = NewLLMWithConfig(&Config{})
	assert.Error(t, err, "openai key is always required for images")

	composite, err := NewLLMWithConfig(&Config{OpenAIAPIKey: "sk", ChatProvider: ProviderOpenAI})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, composite.ChatCompleter)
	assert.IsType(t, &OpenAIClient{}, composite.ImageGenerator)

	composite, err = NewLLMWithConfig(&Config{OpenAIAPIKey: "sk", AnthropicAPIKey: "ak", ChatProvider: ProviderAnthropic})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicChat{}, composite.ChatCompleter)

	_, err = NewLLMWithConfig(&Config{OpenAIAPIKey: "sk", ChatProvider: ProviderAnthropic})
	assert.Error(t, err)

	_, err = NewLLMWithConfig(&Config{OpenAIAPIKey: "sk", ChatProvider: "cohere"})
	assert.Error(t, err)
}
