// Package enforce checks that a completion is written in the selected
// language's script and, when it is not, asks the model once to rewrite it.
package enforce

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/germanamz/smartbuddy/pkg/completion"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/metrics"
	"github.com/germanamz/smartbuddy/pkg/prompts"
)

// DefaultThreshold is the minimum script ratio accepted without correction.
const DefaultThreshold = 0.60

// Completer is the part of completion.Client the enforcer needs.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts completion.Options) (string, error)
}

// CorrectionError reports that the corrective rewrite failed. The original
// text is not returned in its place.
type CorrectionError struct {
	Language language.Language
	Cause    error
}

func (e *CorrectionError) Error() string {
	return fmt.Sprintf("enforce: rewrite into %s failed: %v", e.Language, e.Cause)
}

func (e *CorrectionError) Unwrap() error { return e.Cause }

// Outcome is the result of Enforce.
type Outcome struct {
	Text string
	// Ratio is the script ratio of the input text.
	Ratio float64
	// Corrected is true when Text came from the corrective rewrite.
	Corrected bool
}

// Enforcer applies the language check.
type Enforcer struct {
	client    Completer
	threshold float64
	logger    *slog.Logger
}

// Option configures an Enforcer.
type Option func(*Enforcer)

// WithThreshold sets the acceptance threshold. Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(e *Enforcer) {
		if t > 0 && t <= 1 {
			e.threshold = t
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Enforcer) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Enforcer that issues rewrites through client.
func New(client Completer, opts ...Option) *Enforcer {
	e := &Enforcer{
		client:    client,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// Threshold returns the acceptance threshold.
func (e *Enforcer) Threshold() float64 { return e.threshold }

// Accepts returns the script ratio of text for lang and whether it meets the
// threshold.
func (e *Enforcer) Accepts(text string, lang language.Language) (float64, bool) {
	ratio := language.Ratio(text, lang)
	return ratio, ratio >= e.threshold
}

// Enforce returns text unchanged when its script ratio meets the threshold.
// Otherwise it issues exactly one rewrite request and returns that reply,
// whether or not the reply itself passes the check.
func (e *Enforcer) Enforce(ctx context.Context, text string, lang language.Language) (Outcome, error) {
	ratio, ok := e.Accepts(text, lang)
	metrics.ScriptRatio.WithLabelValues(lang.String()).Observe(ratio)

	if ok {
		return Outcome{Text: text, Ratio: ratio}, nil
	}

	e.logger.Info("enforce: script ratio below threshold, rewriting",
		"language", lang, "ratio", ratio, "threshold", e.threshold)

	out, err := e.client.Complete(ctx, prompts.SystemPrompt(lang), prompts.RewritePrompt(text, lang), completion.Options{
		Temperature: completion.Float(prompts.RewriteTemperature),
		MaxTokens:   completion.Int(prompts.RewriteMaxTokens),
	})
	metrics.Corrections.WithLabelValues(lang.String(), metrics.Outcome(err)).Inc()

	if err != nil {
		return Outcome{}, &CorrectionError{Language: lang, Cause: err}
	}

	if after := language.Ratio(out, lang); after < e.threshold {
		e.logger.Warn("enforce: rewrite still below threshold", "language", lang, "ratio", after)
	}

	return Outcome{Text: out, Ratio: ratio, Corrected: true}, nil
}
