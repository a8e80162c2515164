package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timeout for generation requests
const requestTimeout = 90 * time.Second

// returned when the server refuses a call because the free tier is used up
var ErrLimitExceeded = errors.New("free trial has expired")

// a non-200 response other than the free tier refusal
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Code, e.Body)
}

// manages HTTP requests to the generation REST API
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// creates a new REST client authenticating with a bearer token
func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// sends the conversation to the chat or code route
func (c *Client) Complete(ctx context.Context, mode Mode, messages []Message) (*Message, error) {
	path := "/api/v1/conversation"
	if mode == ModeCode {
		path = "/api/v1/code"
	}

	var reply Message
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"messages": messages}, &reply); err != nil {
		return nil, err
	}

	return &reply, nil
}

// asks for one image at the default resolution
func (c *Client) GenerateImages(ctx context.Context, prompt string) ([]Image, error) {
	var images []Image
	if err := c.do(ctx, http.MethodPost, "/api/v1/image", map[string]any{"prompt": prompt}, &images); err != nil {
		return nil, err
	}

	return images, nil
}

func (c *Client) Usage(ctx context.Context) (*Usage, error) {
	var usage Usage
	if err := c.do(ctx, http.MethodGet, "/api/v1/usage", nil, &usage); err != nil {
		return nil, err
	}

	return &usage, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return ErrLimitExceeded
	default:
		return &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// returns a tea.Cmd that sends a chat or code request
func (c *Client) CompleteCmd(mode Mode, messages []Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		reply, err := c.Complete(ctx, mode, messages)
		if err != nil {
			return RequestErrorMsg{err: err}
		}

		return ReplyMsg{mode: mode, reply: *reply}
	}
}

// returns a tea.Cmd that sends an image request
func (c *Client) GenerateImagesCmd(prompt string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		images, err := c.GenerateImages(ctx, prompt)
		if err != nil {
			return RequestErrorMsg{err: err}
		}

		return ImagesMsg{images: images}
	}
}

// returns a tea.Cmd that fetches the usage counter
func (c *Client) UsageCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		usage, err := c.Usage(ctx)
		if err != nil {
			return RequestErrorMsg{err: err}
		}

		return UsageMsg{usage: *usage}
	}
}
