package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"codeberg.org/genius/server/internal/errors"
	"codeberg.org/genius/server/internal/llm"
	"github.com/gin-gonic/gin"
)

// capability names, also used by GATED_CAPABILITIES
const (
	CapabilityChat  = "chat"
	CapabilityCode  = "code"
	CapabilityImage = "image"
)

// prepended to every code generation conversation
const codeInstruction = "You are a code generator. You must answer only in markdown code snippets. Use code comments for explanations."

// a validated call against the generation service
type Invocation func(ctx context.Context) (any, error)

// one generation route: how to read its payload and which call to make
type Capability interface {
	Name() string

	// log tag for failures, e.g. IMAGE_ERROR
	ErrorTag() string

	// reads and validates the body, returning a *ValidationError on bad input
	Prepare(c *gin.Context) (Invocation, error)
}

type chatCapability struct {
	name     string
	tag      string
	chat     llm.ChatCompleter
	preamble []llm.Message
}

// forwards the conversation as given
func NewChat(chat llm.ChatCompleter) Capability {
	return &chatCapability{
		name: CapabilityChat,
		tag:  "CONVERSATION_ERROR",
		chat: chat,
	}
}

// forwards the conversation behind the code generator instruction
func NewCode(chat llm.ChatCompleter) Capability {
	return &chatCapability{
		name: CapabilityCode,
		tag:  "CODE_ERROR",
		chat: chat,
		preamble: []llm.Message{
			{Role: llm.RoleSystem, Content: codeInstruction},
		},
	}
}

func (cc *chatCapability) Name() string     { return cc.name }
func (cc *chatCapability) ErrorTag() string { return cc.tag }

func (cc *chatCapability) Prepare(c *gin.Context) (Invocation, error) {
	var req ChatRequest
	if err := decodeBody(c, &req); err != nil {
		return nil, err
	}

	if len(req.Messages) == 0 {
		return nil, &ValidationError{Message: MessageMessagesRequired}
	}

	messages := make([]llm.Message, 0, len(cc.preamble)+len(req.Messages))
	messages = append(messages, cc.preamble...)
	messages = append(messages, req.Messages...)

	return func(ctx context.Context) (any, error) {
		return cc.chat.Complete(ctx, messages)
	}, nil
}

type imageCapability struct {
	images llm.ImageGenerator
}

// generates images from a prompt
func NewImage(images llm.ImageGenerator) Capability {
	return &imageCapability{images: images}
}

func (ic *imageCapability) Name() string     { return CapabilityImage }
func (ic *imageCapability) ErrorTag() string { return "IMAGE_ERROR" }

func (ic *imageCapability) Prepare(c *gin.Context) (Invocation, error) {
	var req ImageRequest
	if err := decodeBody(c, &req); err != nil {
		return nil, err
	}

	if req.Prompt == "" {
		return nil, &ValidationError{Message: MessagePromptRequired}
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	resolution, err := parseResolution(req.Resolution)
	if err != nil {
		return nil, err
	}

	imageReq := llm.ImageRequest{
		Prompt:     req.Prompt,
		Amount:     amount,
		Resolution: resolution,
	}

	return func(ctx context.Context) (any, error) {
		return ic.images.GenerateImages(ctx, imageReq)
	}, nil
}

// absent means the default; null, "" and 0 count as missing
func parseAmount(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return defaultAmount, nil
	}

	raw = bytes.TrimSpace(raw)

	switch {
	case bytes.Equal(raw, []byte("null")):
		return 0, &ValidationError{Message: MessageAmountRequired}

	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &ValidationError{Message: MessageAmountInvalid}
		}

		if s == "" {
			return 0, &ValidationError{Message: MessageAmountRequired}
		}

		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return 0, &ValidationError{Message: MessageAmountInvalid}
		}

		return n, nil

	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, &ValidationError{Message: MessageAmountInvalid}
		}

		if n.String() == "0" {
			return 0, &ValidationError{Message: MessageAmountRequired}
		}

		v, err := n.Int64()
		if err != nil || v <= 0 {
			return 0, &ValidationError{Message: MessageAmountInvalid}
		}

		return int(v), nil
	}
}

// absent means the default; null and "" count as missing
func parseResolution(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return defaultResolution, nil
	}

	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return "", &ValidationError{Message: MessageResolutionRequired}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Message: errors.MessageInvalidBody}
	}

	if s == "" {
		return "", &ValidationError{Message: MessageResolutionRequired}
	}

	return s, nil
}

// an empty body reads as an empty object so the required-field checks
// produce their specific messages
func decodeBody(c *gin.Context, dst any) error {
	body, err := c.GetRawData()
	if err != nil {
		return &ValidationError{Message: errors.MessageInvalidBody}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &ValidationError{Message: errors.MessageInvalidBody}
	}

	return nil
}
