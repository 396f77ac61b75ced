package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Anthropic API defaults.
const (
	DefaultAnthropicURL = "https://api.anthropic.com"
	AnthropicVersion    = "2023-06-01"
)

// Anthropic implements [Provider] for the Anthropic Messages API.
type Anthropic struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// AnthropicOption configures an Anthropic provider.
type AnthropicOption func(*Anthropic)

// WithBaseURL points the provider at a proxy or test server.
func WithBaseURL(u string) AnthropicOption {
	return func(a *Anthropic) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) AnthropicOption {
	return func(a *Anthropic) { a.httpClient = c }
}

// NewAnthropic creates an Anthropic provider authenticated with apiKey.
func NewAnthropic(apiKey string, opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    DefaultAnthropicURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Complete sends a non-streaming request and returns the full response.
func (provider *Anthropic) Complete(ctx context.Context, request Request) (*Response, error) {
	headers := map[string]string{
		"x-api-key":         provider.apiKey,
		"anthropic-version": AnthropicVersion,
	}
	for k, v := range request.ExtraHeaders {
		headers[k] = v
	}

	httpResponse, err := doProviderRequest(ctx, provider.httpClient,
		provider.baseURL+"/v1/messages", provider.buildRequest(request), "llm/anthropic", headers)
	if err != nil {
		return nil, err
	}

	return decodeResponse[anthropicResponse](httpResponse, "llm/anthropic")
}

// buildRequest converts our types to Anthropic wire format.
func (provider *Anthropic) buildRequest(request Request) anthropicRequest {
	wireRequest := anthropicRequest{
		Model:       request.Model,
		MaxTokens:   request.MaxTokens,
		System:      request.System,
		Temperature: request.Temperature,
	}
	for _, message := range request.Messages {
		wireRequest.Messages = append(wireRequest.Messages, anthropicMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}
	return wireRequest
}

// Wire types.

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      anthropicUsage          `json:"usage"`
}

func (wire *anthropicResponse) toResponse() *Response {
	response := &Response{
		Model:      wire.Model,
		StopReason: StopReason(wire.StopReason),
		Usage: Usage{
			InputTokens:  wire.Usage.InputTokens,
			OutputTokens: wire.Usage.OutputTokens,
		},
	}
	for _, block := range wire.Content {
		response.Content = append(response.Content, ContentBlock{Type: block.Type, Text: block.Text})
	}
	return response
}
