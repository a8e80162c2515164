package generate

import (
	"encoding/json"

	"codeberg.org/genius/server/internal/llm"
)

// request body for the conversation and code routes
type ChatRequest struct {
	Messages []llm.Message `json:"messages"`
}

// request body for the image route
type ImageRequest struct {
	Prompt string `json:"prompt"`

	// accepts a string or a number, defaults to "1" when absent
	Amount json.RawMessage `json:"amount,omitempty"`

	// defaults to "512x512" when absent, null counts as missing
	Resolution json.RawMessage `json:"resolution,omitempty"`
}

// a capability-specific 400 message
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// validation messages
const (
	MessageMessagesRequired   = "Messages are required"
	MessagePromptRequired     = "Prompt is required"
	MessageAmountRequired     = "Amount is required"
	MessageAmountInvalid      = "Amount must be a positive integer"
	MessageResolutionRequired = "Resolution is required"
)

const (
	defaultAmount     = 1
	defaultResolution = "512x512"
)
