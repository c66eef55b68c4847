package engine

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/germanamz/smartbuddy/pkg/completion"
	"github.com/germanamz/smartbuddy/pkg/enforce"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/modeladapter/usage"
	"github.com/germanamz/smartbuddy/pkg/output"
	"github.com/germanamz/smartbuddy/pkg/prompts"
	"github.com/germanamz/smartbuddy/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	text string
	err  error
}

// mockCompleter replays scripted steps and records requests.
type mockCompleter struct {
	modeladapter.ModelAdapter

	mu    sync.Mutex
	steps []step
	reqs  []modeladapter.Request
}

func newMock(steps ...step) *mockCompleter {
	m := &mockCompleter{steps: steps}
	m.Auth.Key = "test-key"
	return m
}

func (m *mockCompleter) Complete(_ context.Context, req modeladapter.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reqs = append(m.reqs, req)
	if len(m.steps) == 0 {
		return "", errors.New("mock: no more steps")
	}
	s := m.steps[0]
	m.steps = m.steps[1:]
	return s.text, s.err
}

func instantPolicy() retry.Policy {
	p := retry.Default()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func newTestEngine(t *testing.T, m *mockCompleter) *Engine {
	t.Helper()

	eng, err := New(DefaultConfig(), WithCompleter(m), WithRetryPolicy(instantPolicy()))
	require.NoError(t, err)
	return eng
}

func stages(events []Event) []Stage {
	out := make([]Stage, len(events))
	for i, e := range events {
		out[i] = e.Stage
	}
	return out
}

func TestEngine_RunAcceptsMatchingScript(t *testing.T) {
	m := newMock(step{text: "1. नमस्कार मित्रांनो 🌊\n2. समुद्रकिनारी मजा"})
	eng := newTestEngine(t, m)

	var events []Event
	sess := NewSession(language.Marathi, func(e Event) { events = append(events, e) })

	res, err := eng.Run(context.Background(), sess, prompts.ChatStyle{Mood: "Beach day", Variants: 2})
	require.NoError(t, err)

	assert.Equal(t, prompts.FeatureChatStyle, res.Feature)
	assert.Equal(t, []string{"1. नमस्कार मित्रांनो 🌊", "2. समुद्रकिनारी मजा"}, res.Blocks)
	assert.True(t, res.Checked)
	assert.False(t, res.Corrected)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Share.WhatsApp, "https://wa.me/?text=")

	require.Len(t, m.reqs, 1)
	assert.Equal(t, prompts.SystemPrompt(language.Marathi), m.reqs[0].System)
	assert.InDelta(t, 0.8, m.reqs[0].Temperature, 1e-9)
	assert.Equal(t, 700, m.reqs[0].MaxTokens)

	assert.Equal(t, []Stage{StageRequesting, StageCheckingLanguage, StageAccepted}, stages(events))
	for _, e := range events {
		assert.Equal(t, sess.ID(), e.SessionID)
	}
	assert.Equal(t, StageAccepted, sess.Stage())
}

func TestEngine_RunSharesEachBlock(t *testing.T) {
	m := newMock(step{text: "1. first caption\n2. second caption"})
	eng := newTestEngine(t, m)

	res, err := eng.Run(context.Background(), eng.NewSession(nil), prompts.ChatStyle{Mood: "Beach day", Variants: 2})
	require.NoError(t, err)

	require.Len(t, res.Blocks, 2)
	require.Len(t, res.BlockShare, 2)
	assert.Equal(t, output.Share("1. first caption"), res.BlockShare[0])
	assert.Equal(t, "https://wa.me/?text=2.+second+caption", res.BlockShare[1].WhatsApp)
	assert.NotEqual(t, res.BlockShare[0].LinkedIn, res.BlockShare[1].LinkedIn)
	assert.Equal(t, "https://wa.me/?text=1.+first+caption%0A2.+second+caption", res.Share.WhatsApp)
}

func TestEngine_RunBlankReplyFails(t *testing.T) {
	m := newMock(step{text: "   \n "})
	eng := newTestEngine(t, m)

	res, err := eng.Run(context.Background(), eng.NewSession(nil), prompts.DailyPal{Description: "x"})
	require.ErrorIs(t, err, modeladapter.ErrEmptyResponse)
	assert.Empty(t, res.Blocks)
	assert.Len(t, m.reqs, 1)
}

func TestEngine_RunCorrectsWrongScript(t *testing.T) {
	m := newMock(step{text: "Hello friend"}, step{text: "नमस्कार मित्र"})
	eng := newTestEngine(t, m)

	var events []Event
	sess := NewSession(language.Marathi, func(e Event) { events = append(events, e) })

	res, err := eng.Run(context.Background(), sess, prompts.TalkSmart{Scenario: "Say hi"})
	require.NoError(t, err)

	assert.Equal(t, "नमस्कार मित्र", res.Text)
	assert.True(t, res.Corrected)
	assert.InDelta(t, 0, res.Ratio, 1e-9)
	require.Len(t, m.reqs, 2)
	assert.InDelta(t, 0.3, m.reqs[1].Temperature, 1e-9)

	assert.Equal(t, []Stage{StageRequesting, StageCheckingLanguage, StageCorrecting, StageAccepted}, stages(events))
}

func TestEngine_RunRetriesTransientFailures(t *testing.T) {
	m := newMock(
		step{err: &modeladapter.StatusError{StatusCode: http.StatusServiceUnavailable}},
		step{text: "Plan for today"},
	)
	eng := newTestEngine(t, m)

	var events []Event
	sess := NewSession(language.English, func(e Event) { events = append(events, e) })

	res, err := eng.Run(context.Background(), sess, prompts.DailyPal{Description: "gym at 7"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []Stage{StageRequesting, StageRetrying, StageCheckingLanguage, StageAccepted}, stages(events))
	assert.Equal(t, 1, events[1].Attempt)
	assert.Error(t, events[1].Err)
	assert.InDelta(t, 0.6, m.reqs[0].Temperature, 1e-9)
}

func TestEngine_RunTranslateSkipsCheck(t *testing.T) {
	m := newMock(step{text: "ನಾಳೆ ಸಿಗೋಣ"})
	eng := newTestEngine(t, m)

	sess := NewSession(language.English, nil)
	res, err := eng.Run(context.Background(), sess, prompts.Translate{Text: "See you tomorrow", Target: language.Kannada})
	require.NoError(t, err)

	assert.False(t, res.Checked)
	assert.False(t, res.Corrected)
	assert.Len(t, m.reqs, 1)
	assert.InDelta(t, 0.5, m.reqs[0].Temperature, 1e-9)
}

func TestEngine_RunValidationErrorMakesNoCall(t *testing.T) {
	m := newMock()
	eng := newTestEngine(t, m)

	var events []Event
	sess := NewSession(language.English, func(e Event) { events = append(events, e) })

	_, err := eng.Run(context.Background(), sess, prompts.ChatStyle{Mood: "  "})
	require.ErrorIs(t, err, prompts.ErrEmptyInput)
	assert.Contains(t, err.Error(), "engine: chatstyle:")
	assert.Empty(t, m.reqs)
	assert.Equal(t, []Stage{StageRequesting, StageFailed}, stages(events))
}

func TestEngine_RunExhaustedKeepsCause(t *testing.T) {
	unavailable := step{err: &modeladapter.StatusError{StatusCode: http.StatusBadGateway, Body: "bad gateway"}}
	m := newMock(unavailable, unavailable, unavailable)
	eng := newTestEngine(t, m)

	_, err := eng.Run(context.Background(), NewSession(language.English, nil), prompts.DailyPal{Description: "x"})

	var ex *retry.ExhaustedError
	require.ErrorAs(t, err, &ex)
	var se *modeladapter.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Len(t, m.reqs, 3)
}

func TestEngine_RunCorrectionFailure(t *testing.T) {
	m := newMock(
		step{text: "Hello friend"},
		step{err: &modeladapter.StatusError{StatusCode: http.StatusForbidden}},
	)
	eng := newTestEngine(t, m)

	var events []Event
	sess := NewSession(language.Hindi, func(e Event) { events = append(events, e) })

	_, err := eng.Run(context.Background(), sess, prompts.TalkSmart{Scenario: "x"})

	var ce *enforce.CorrectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, language.Hindi, ce.Language)
	assert.Equal(t, StageFailed, events[len(events)-1].Stage)
}

func TestEngine_MissingCredential(t *testing.T) {
	m := newMock(step{text: "never"})
	m.Auth.Key = ""
	eng := newTestEngine(t, m)

	assert.False(t, eng.Available())

	_, err := eng.Run(context.Background(), eng.NewSession(nil), prompts.DailyPal{Description: "x"})
	require.ErrorIs(t, err, completion.ErrMissingCredential)
	assert.Empty(t, m.reqs)
}

func TestEngine_SessionBusy(t *testing.T) {
	m := newMock(step{text: "ok"})
	eng := newTestEngine(t, m)

	sess := NewSession(language.English, nil)
	require.NoError(t, sess.acquire())

	_, err := eng.Run(context.Background(), sess, prompts.DailyPal{Description: "x"})
	assert.ErrorIs(t, err, ErrSessionBusy)

	sess.release()
	_, err = eng.Run(context.Background(), sess, prompts.DailyPal{Description: "x"})
	assert.NoError(t, err)
}

func TestEngine_RegisteredProvider(t *testing.T) {
	m := newMock(step{text: "hello"})
	RegisterProvider("mock", func(_ ProviderConfig) (modeladapter.Completer, error) {
		return m, nil
	})

	cfg := DefaultConfig()
	cfg.Provider.Kind = "mock"

	eng, err := New(cfg, WithRetryPolicy(instantPolicy()))
	require.NoError(t, err)
	assert.True(t, eng.Available())

	res, err := eng.Run(context.Background(), eng.NewSession(nil), prompts.DailyPal{Description: "x"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)

	u, ok := eng.Usage()
	assert.True(t, ok)
	assert.Zero(t, u.Calls)
	assert.Zero(t, u.Total.Total())
}

func TestEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language.Threshold = 0

	_, err := New(cfg)
	assert.ErrorContains(t, err, "threshold")
}

func TestEngine_DefaultLanguage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Language.Default = language.Kannada

	eng, err := New(cfg, WithCompleter(newMock()))
	require.NoError(t, err)

	assert.Equal(t, language.Kannada, eng.DefaultLanguage())
	assert.Equal(t, language.Kannada, eng.NewSession(nil).Language())
}

func TestEngine_UsageAggregatesProviderTotals(t *testing.T) {
	m := newMock(step{text: "ok"})
	eng := newTestEngine(t, m)

	m.Usage.Add("gpt-4o-mini", usage.TokenCount{InputTokens: 12, OutputTokens: 30})
	m.Usage.Add("gpt-4o", usage.TokenCount{InputTokens: 3, OutputTokens: 4})

	u, ok := eng.Usage()
	require.True(t, ok)
	assert.Equal(t, 2, u.Calls)
	assert.Equal(t, 49, u.Total.Total())
	assert.Equal(t, usage.TokenCount{InputTokens: 3, OutputTokens: 4}, u.ByModel["gpt-4o"])
}
