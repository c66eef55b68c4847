package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/germanamz/smartbuddy/pkg/completion"
	"github.com/germanamz/smartbuddy/pkg/enforce"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/metrics"
	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/modeladapter/usage"
	"github.com/germanamz/smartbuddy/pkg/output"
	"github.com/germanamz/smartbuddy/pkg/prompts"
	"github.com/germanamz/smartbuddy/pkg/retry"
)

// Result is the outcome of one successful Run.
type Result struct {
	Feature prompts.Feature `json:"feature"`
	Text    string          `json:"text"`
	Blocks  []string        `json:"blocks"`
	// BlockShare holds the share links for each entry of Blocks.
	BlockShare []output.Links `json:"block_share"`
	// Share links the whole text.
	Share output.Links `json:"share"`

	// Checked is true when the language check ran.
	Checked bool `json:"checked"`
	// Corrected is true when Text came from the corrective rewrite.
	Corrected bool `json:"corrected"`
	// Ratio is the script ratio of the first reply; zero when unchecked.
	Ratio float64 `json:"ratio"`
	// Attempts counts provider calls for the main request.
	Attempts int `json:"attempts"`
}

// Engine is the composition root that assembles the provider, completion
// client and language enforcer from configuration.
type Engine struct {
	cfg       Config
	completer modeladapter.Completer
	client    *completion.Client
	enforcer  *enforce.Enforcer
	logger    *slog.Logger
	policy    *retry.Policy
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger passed down to every component.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCompleter bypasses the provider factory and uses c directly.
func WithCompleter(c modeladapter.Completer) Option {
	return func(e *Engine) { e.completer = c }
}

// WithRetryPolicy replaces the policy derived from Config.Retry.
func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Engine) { e.policy = &p }
}

// New creates an Engine from the given configuration. It validates the config
// and builds the provider adapter, completion client and enforcer. A missing
// credential does not fail New; see Available.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}

	if e.completer == nil {
		c, err := buildCompleter(cfg.Provider)
		if err != nil {
			return nil, err
		}
		e.completer = c
	}

	policy := cfg.RetryPolicy()
	if e.policy != nil {
		policy = *e.policy
	}

	e.client = completion.New(e.completer,
		completion.WithModel(cfg.Provider.Model),
		completion.WithTemperature(cfg.Completion.Temperature),
		completion.WithMaxTokens(cfg.Completion.MaxTokens),
		completion.WithRetry(policy),
		completion.WithLogger(e.logger),
	)

	e.enforcer = enforce.New(e.client,
		enforce.WithThreshold(cfg.Language.Threshold),
		enforce.WithLogger(e.logger),
	)

	available := 0.0
	if e.Available() {
		available = 1
	}
	metrics.ProviderAvailable.WithLabelValues(cfg.Provider.Kind).Set(available)

	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// DefaultLanguage returns the configured default language.
func (e *Engine) DefaultLanguage() language.Language {
	if e.cfg.Language.Default.Valid() {
		return e.cfg.Language.Default
	}
	return language.Default
}

// NewSession creates a session in the default language.
func (e *Engine) NewSession(observe func(Event)) *Session {
	return NewSession(e.DefaultLanguage(), observe)
}

// Available reports whether the provider is ready to accept requests.
func (e *Engine) Available() bool {
	return e.client.Ready() == nil
}

// Usage summarises the tokens the provider reported since startup.
type Usage struct {
	Calls   int                         `json:"calls"`
	Total   usage.TokenCount            `json:"total"`
	ByModel map[string]usage.TokenCount `json:"by_model"`
}

// Usage returns the provider's token usage. The bool is false when the
// provider does not track usage.
func (e *Engine) Usage() (Usage, bool) {
	ur, ok := e.completer.(modeladapter.UsageReporter)
	if !ok {
		return Usage{}, false
	}

	tr := ur.UsageTracker()
	return Usage{
		Calls:   tr.Count(),
		Total:   tr.Total(),
		ByModel: tr.ByModel(),
	}, true
}

// Run builds the prompt for task in the session's language, requests a
// completion, applies the language check when the task asks for it, and
// shapes the reply for display. Errors keep their cause chain and are wrapped
// with the feature name.
func (e *Engine) Run(ctx context.Context, sess *Session, task prompts.Task) (Result, error) {
	if err := sess.acquire(); err != nil {
		return Result{}, err
	}
	defer sess.release()

	feature := task.Feature()
	lang := sess.Language()

	fail := func(err error) (Result, error) {
		sess.emit(Event{Stage: StageFailed, Feature: feature, Err: err})
		e.logger.Warn("engine: run failed", "session", sess.ID(), "feature", feature, "error", err)
		return Result{}, fmt.Errorf("engine: %s: %w", feature, err)
	}

	sess.emit(Event{Stage: StageRequesting, Feature: feature})

	prompt, err := task.Build(lang)
	if err != nil {
		return fail(err)
	}

	attempts := 1
	text, err := e.client.Complete(ctx, prompt.System, prompt.User, completion.Options{
		Temperature: prompt.Temperature,
		OnRetry: func(a retry.Attempt) {
			attempts++
			sess.emit(Event{Stage: StageRetrying, Feature: feature, Attempt: a.Number, Delay: a.Delay, Err: a.Err})
		},
	})
	if err != nil {
		return fail(err)
	}

	res := Result{Feature: feature, Text: text, Attempts: attempts}

	if prompt.Enforce {
		sess.emit(Event{Stage: StageCheckingLanguage, Feature: feature})

		if ratio, ok := e.enforcer.Accepts(text, lang); !ok {
			sess.emit(Event{Stage: StageCorrecting, Feature: feature, Ratio: ratio})
		}

		out, err := e.enforcer.Enforce(ctx, text, lang)
		if err != nil {
			return fail(err)
		}

		res.Text = out.Text
		res.Checked = true
		res.Corrected = out.Corrected
		res.Ratio = out.Ratio
	}

	res.Blocks = output.Blocks(res.Text)
	res.BlockShare = make([]output.Links, len(res.Blocks))
	for i, b := range res.Blocks {
		res.BlockShare[i] = output.Share(b)
	}
	res.Share = output.Share(res.Text)

	sess.emit(Event{Stage: StageAccepted, Feature: feature})
	e.logger.Info("engine: run accepted",
		"session", sess.ID(), "feature", feature, "language", lang,
		"attempts", attempts, "corrected", res.Corrected)

	return res, nil
}
