package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/erraggy/oasmend"
	"github.com/erraggy/oasmend/oaserrors"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the chat model used when Client.Model is empty.
	DefaultModel = "llama-3.1-8b-instant"

	// DefaultMaxTokens bounds the completion length when Client.MaxTokens is zero.
	DefaultMaxTokens = 4096

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20
)

// Client is an OpenAI-compatible chat-completions client.
//
// The zero value talks to DefaultBaseURL with DefaultModel and needs only an
// APIKey. A Client is safe for concurrent use.
type Client struct {
	// BaseURL is the API root; "/chat/completions" is appended
	BaseURL string
	// APIKey is sent as a bearer token when non-empty
	APIKey string
	// Model is the model identifier
	Model string
	// MaxTokens bounds the completion length
	MaxTokens int
	// Temperature is the sampling temperature
	Temperature float64
	// HTTPClient performs requests; http.DefaultClient when nil
	HTTPClient *http.Client
	// UserAgent overrides the User-Agent header
	UserAgent string
}

var _ Model = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponseMessage struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Refusal   json.RawMessage `json:"refusal,omitempty"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
}

type chatChoice struct {
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Invoke sends prompt as a single user message and returns the first choice
// as a WrappedText.
func (c *Client) Invoke(ctx context.Context, prompt string) (Response, error) {
	endpoint := strings.TrimRight(c.baseURL(), "/") + "/chat/completions"

	temperature := c.Temperature
	payload := chatRequest{
		Model:       c.model(),
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens(),
		Temperature: &temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &oaserrors.TransportError{Endpoint: endpoint, Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		// Cancellation by the caller is not worth retrying; deadline expiry
		// and network failures are.
		return nil, &oaserrors.TransportError{
			Endpoint:  endpoint,
			Retryable: !errors.Is(err, context.Canceled),
			Message:   "request failed",
			Cause:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &oaserrors.TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Retryable:  true,
			Message:    "read response",
			Cause:      err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &oaserrors.TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Retryable:  retryableStatus(resp.StatusCode),
			Message:    truncate(strings.TrimSpace(string(data)), 512),
		}
	}

	var completion chatResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return nil, &oaserrors.TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "decode chat completion (body=" + truncate(string(data), 240) + ")",
			Cause:      err,
		}
	}
	if len(completion.Choices) == 0 {
		return nil, &oaserrors.TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "chat completion returned no choices",
		}
	}

	choice := completion.Choices[0]
	content, err := messageContent(choice.Message)
	if err != nil {
		return nil, &oaserrors.TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    "chat completion",
			Cause:      err,
		}
	}

	role := choice.Message.Role
	if role == "" {
		role = "assistant"
	}
	model := completion.Model
	if model == "" {
		model = payload.Model
	}
	return WrappedText{Content: content, Role: role, Model: model}, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel
}

func (c *Client) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultMaxTokens
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return oasmend.UserAgent()
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}

// messageContent returns the text of a chat message. Content may be a plain
// string or an array of typed parts; parts are flattened in order. A null or
// empty content with a refusal is an error.
func messageContent(msg chatResponseMessage) (string, error) {
	if len(msg.Content) == 0 || string(msg.Content) == "null" {
		if refusal := decodeRefusal(msg.Refusal); refusal != "" {
			return "", fmt.Errorf("refusal: %s", refusal)
		}
		if len(msg.ToolCalls) > 0 && string(msg.ToolCalls) != "null" {
			return "", fmt.Errorf("produced tool_calls instead of content: %s", truncate(string(msg.ToolCalls), 240))
		}
		return "", errors.New("empty message content")
	}

	var s string
	if err := json.Unmarshal(msg.Content, &s); err == nil {
		return s, nil
	}

	var data any
	if err := json.Unmarshal(msg.Content, &data); err == nil {
		if parts := flattenText(data); len(parts) > 0 {
			return strings.Join(parts, "\n"), nil
		}
	}

	if refusal := decodeRefusal(msg.Refusal); refusal != "" {
		return "", fmt.Errorf("refusal: %s", refusal)
	}
	return "", fmt.Errorf("unsupported message content: %s", truncate(string(msg.Content), 240))
}

func flattenText(value any) []string {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, flattenText(item)...)
		}
		return out
	case map[string]any:
		for _, key := range []string{"text", "content", "value"} {
			if nested, ok := v[key]; ok {
				return flattenText(nested)
			}
		}
		return nil
	default:
		return nil
	}
}

func decodeRefusal(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err == nil {
		return strings.TrimSpace(strings.Join(flattenText(data), " "))
	}
	return strings.TrimSpace(truncate(string(raw), 200))
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
