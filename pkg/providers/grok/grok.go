// Package grok implements the modeladapter.Completer interface for xAI's Grok models
// using the OpenAI-compatible chat completions API.
package grok

import (
	"context"
	"fmt"
	"net/http"

	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/modeladapter/usage"
)

// DefaultBaseURL is the base URL for the xAI API.
const DefaultBaseURL = "https://api.x.ai/v1"

// DefaultModel is used when no model is configured.
const DefaultModel = "grok-3-mini"

// verifyCompleter ensures GrokAdapter satisfies the Completer interface at compile time.
var _ modeladapter.Completer = (*GrokAdapter)(nil)

// GrokAdapter sends chat completions to xAI's Grok API.
type GrokAdapter struct {
	modeladapter.ModelAdapter
}

// New creates a GrokAdapter with the given API key and HTTP client.
// A nil client falls back to a client bounded by modeladapter.DefaultTimeout.
func New(apiKey string, client *http.Client) *GrokAdapter {
	a := &GrokAdapter{
		ModelAdapter: modeladapter.New(DefaultBaseURL, modeladapter.Auth{Key: apiKey}, client),
	}
	a.Name = DefaultModel
	return a
}

// Complete sends the request to the Grok chat completions endpoint
// and returns the assistant's reply.
func (g *GrokAdapter) Complete(ctx context.Context, req modeladapter.Request) (string, error) {
	model := g.Model(req)

	body := chatRequest{
		Model: model,
		Messages: []apiMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp chatResponse
	if err := g.PostJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return "", fmt.Errorf("grok: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("grok: %w", modeladapter.ErrEmptyResponse)
	}

	g.Usage.Add(model, usage.TokenCount{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	})

	return resp.Choices[0].Message.Content, nil
}

// API request/response types.

type chatRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string   `json:"id"`
	Choices []choice `json:"choices"`
	Usage   apiUsage `json:"usage"`
}

type choice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}
