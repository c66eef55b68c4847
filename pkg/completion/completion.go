// Package completion sends one system/user prompt pair to the configured LLM
// provider, retrying transient failures under a bounded backoff policy, and
// returns the trimmed text of the first choice.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/germanamz/smartbuddy/pkg/metrics"
	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/retry"
)

// Defaults applied when neither the client nor the call overrides them.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 700
)

var (
	// ErrMissingCredential means no API key is configured for the provider.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrEmptyPrompt is returned for a blank system or user prompt.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// ConfigError reports a configuration problem detected before any network
// call. It is never retried.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return "completion: configuration: " + e.Reason
	}
	return fmt.Sprintf("completion: configuration: %s: %v", e.Reason, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Options overrides the client defaults for a single call. Nil pointers keep
// the default.
type Options struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
	// OnRetry, if set, is called before each backoff sleep.
	OnRetry func(retry.Attempt)
}

// Float returns a pointer to v, for use in Options.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for use in Options.
func Int(v int) *int { return &v }

// Client issues completion requests through a provider Completer.
// It is safe for concurrent use when the underlying Completer is.
type Client struct {
	completer   modeladapter.Completer
	model       string
	temperature float64
	maxTokens   int
	policy      retry.Policy
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithMaxTokens sets the default completion token bound.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithRetry replaces the retry policy.
func WithRetry(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client over completer.
func New(completer modeladapter.Completer, opts ...Option) *Client {
	c := &Client{
		completer:   completer,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		policy:      retry.Default(),
		logger:      slog.Default(),
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Model returns the default model the client requests.
func (c *Client) Model() string { return c.model }

// Ready reports a configuration error if the provider has no credential.
func (c *Client) Ready() error {
	if c.completer == nil {
		return &ConfigError{Reason: "no provider configured"}
	}
	if cr, ok := c.completer.(modeladapter.CredentialReporter); ok && !cr.HasCredential() {
		return &ConfigError{Reason: "provider", Err: ErrMissingCredential}
	}
	return nil
}

// Complete sends system and user to the provider and returns the trimmed text
// of the first choice. Transient failures are retried under the client's
// policy; exhaustion yields a *retry.ExhaustedError wrapping the last cause.
func (c *Client) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	if strings.TrimSpace(system) == "" || strings.TrimSpace(user) == "" {
		return "", fmt.Errorf("completion: %w", ErrEmptyPrompt)
	}

	if err := c.Ready(); err != nil {
		return "", err
	}

	req := c.request(system, user, opts)

	policy := c.policy
	prev := policy.OnRetry
	policy.OnRetry = func(a retry.Attempt) {
		metrics.CompletionRetries.Inc()
		c.logger.Warn("completion: transient failure, retrying",
			"attempt", a.Number, "delay", a.Delay, "error", a.Err)
		if prev != nil {
			prev(a)
		}
		if opts.OnRetry != nil {
			opts.OnRetry(a)
		}
	}

	start := time.Now()
	attempts := 0

	var text string
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempts++
		c.logger.Debug("completion: request", "model", req.Model, "attempt", attempts)

		out, err := c.completer.Complete(ctx, req)
		if err != nil {
			return err
		}
		if text = strings.TrimSpace(out); text == "" {
			return fmt.Errorf("completion: %w", modeladapter.ErrEmptyResponse)
		}
		return nil
	})

	metrics.CompletionDuration.WithLabelValues(req.Model).Observe(time.Since(start).Seconds())
	metrics.Completions.WithLabelValues(metrics.Outcome(err)).Inc()

	if err != nil {
		c.logger.Debug("completion: failed", "model", req.Model, "attempts", attempts, "error", err)
		return "", err
	}

	return text, nil
}

func (c *Client) request(system, user string, opts Options) modeladapter.Request {
	req := modeladapter.Request{
		System:      system,
		User:        user,
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}

	return req
}
