// Package anthropic provides a Completer implementation for the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/modeladapter/usage"
)

// DefaultBaseURL is the Anthropic API origin.
const DefaultBaseURL = "https://api.anthropic.com"

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

// DefaultMaxTokens is sent when the request leaves MaxTokens unset; the
// Messages API requires the field.
const DefaultMaxTokens = 1024

const messagesPath = "/v1/messages"

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the Anthropic Messages API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Anthropic API.
// The baseURL should be "https://api.anthropic.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-api-key",
	}
	a.Name = model
	a.Headers = map[string]string{
		"anthropic-version": "2023-06-01",
	}

	return a
}

// Complete sends the request to the Anthropic Messages API and returns the
// concatenated text blocks of the reply.
func (a *Adapter) Complete(ctx context.Context, req modeladapter.Request) (string, error) {
	model := a.Model(req)

	var resp apiResponse
	if err := a.PostJSON(ctx, messagesPath, buildRequest(model, req), &resp); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	a.Usage.Add(model, usage.TokenCount{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	var b strings.Builder
	found := false
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		found = true
		b.WriteString(block.Text)
	}

	if !found {
		return "", fmt.Errorf("anthropic: %w", modeladapter.ErrEmptyResponse)
	}

	return b.String(), nil
}

// --- request types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
}

type apiMessage struct {
	Role    string       `json:"role"`
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Content    []apiContent `json:"content"`
	StopReason string       `json:"stop_reason"`
	Usage      apiUsage     `json:"usage"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func buildRequest(model string, req modeladapter.Request) apiRequest {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return apiRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages: []apiMessage{
			{Role: "user", Content: []apiContent{{Type: "text", Text: req.User}}},
		},
		Temperature: req.Temperature,
	}
}
