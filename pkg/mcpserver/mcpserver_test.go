package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/modeladapter"
	"github.com/germanamz/smartbuddy/pkg/prompts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(_ context.Context, input json.RawMessage) (engine.Result, error) {
	return engine.Result{Text: string(input)}, nil
}

func errorHandler(_ context.Context, _ json.RawMessage) (engine.Result, error) {
	return engine.Result{}, errors.New("tool failed")
}

func newTestTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "Test tool: " + name,
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler:     echoHandler,
	}
}

// setupTestClient connects an SDK client to s via in-memory transports and
// returns the client session. The server runs in a background goroutine tied
// to t.Cleanup.
func setupTestClient(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.run(ctx, serverTransport)
	}()
	t.Cleanup(func() {
		cancel()
		<-serverDone
	})

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func texts(t *testing.T, res *mcp.CallToolResult) []string {
	t.Helper()

	out := make([]string, 0, len(res.Content))
	for _, c := range res.Content {
		tc, ok := c.(*mcp.TextContent)
		require.True(t, ok)
		out = append(out, tc.Text)
	}
	return out
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	got := texts(t, res)
	require.Len(t, got, 1)
	return got[0]
}

// recordingRunner captures the last task and session language.
type recordingRunner struct {
	task  prompts.Task
	lang  language.Language
	reply string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, sess *engine.Session, task prompts.Task) (engine.Result, error) {
	r.task = task
	r.lang = sess.Language()
	if r.err != nil {
		return engine.Result{}, r.err
	}
	return engine.Result{Feature: task.Feature(), Text: r.reply}, nil
}

func (r *recordingRunner) DefaultLanguage() language.Language { return language.Hindi }

func TestToolCallSuccess(t *testing.T) {
	s := New("test-server", "1.0.0", newTestTool("echo"))
	session := setupTestClient(t, s)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"msg": "hello"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"msg":"hello"}`, textOf(t, result))
}

func TestToolCallHandlerError(t *testing.T) {
	s := New("test-server", "1.0.0", Tool{
		Name:        "fail",
		Description: "Always fails",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler:     errorHandler,
	})
	session := setupTestClient(t, s)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "fail",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "tool failed", textOf(t, result))
}

func TestFeatureServer_ListTools(t *testing.T) {
	session := setupTestClient(t, NewFeatureServer("smartbuddy", "test", &recordingRunner{}))

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
	}
	assert.ElementsMatch(t, []string{"chatstyle", "talksmart", "translate", "dailypal"}, names)
}

func TestFeatureServer_ChatStyleDefaults(t *testing.T) {
	r := &recordingRunner{reply: "caption"}
	session := setupTestClient(t, NewFeatureServer("smartbuddy", "test", r))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "chatstyle",
		Arguments: map[string]any{"mood": "Birthday post", "language": "mr"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "caption", textOf(t, result))

	task, ok := r.task.(prompts.ChatStyle)
	require.True(t, ok)
	assert.Equal(t, "Birthday post", task.Mood)
	assert.Equal(t, prompts.Instagram, task.Platform)
	assert.True(t, task.Hashtags)
	assert.Equal(t, prompts.DefaultVariants, task.Variants)
	assert.Equal(t, language.Marathi, r.lang)
}

func TestFeatureServer_DefaultLanguage(t *testing.T) {
	r := &recordingRunner{reply: "ok"}
	session := setupTestClient(t, NewFeatureServer("smartbuddy", "test", r))

	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "translate",
		Arguments: map[string]any{"text": "good night", "target": "kn"},
	})
	require.NoError(t, err)

	task, ok := r.task.(prompts.Translate)
	require.True(t, ok)
	assert.Equal(t, language.Kannada, task.Target)
	assert.Equal(t, language.Hindi, r.lang)
}

func TestFeatureServer_InvalidLanguage(t *testing.T) {
	session := setupTestClient(t, NewFeatureServer("smartbuddy", "test", &recordingRunner{}))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "dailypal",
		Arguments: map[string]any{"description": "busy", "language": "klingon"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "unknown language")
}

func TestFeatureServer_RunErrorSurfaced(t *testing.T) {
	r := &recordingRunner{err: errors.New("engine: talksmart: prompts: scenario: empty input")}
	session := setupTestClient(t, NewFeatureServer("smartbuddy", "test", r))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "talksmart",
		Arguments: map[string]any{"scenario": ""},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "empty input")
}

type fixedCompleter struct{ reply string }

func (f fixedCompleter) Complete(context.Context, modeladapter.Request) (string, error) {
	return f.reply, nil
}

func TestFeatureServer_ThroughEngine(t *testing.T) {
	eng, err := engine.New(engine.DefaultConfig(), engine.WithCompleter(fixedCompleter{reply: "9:00 Office\n\n19:00 Gym"}))
	require.NoError(t, err)

	session := setupTestClient(t, NewFeatureServer("smartbuddy", "test", eng))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "dailypal",
		Arguments: map[string]any{"description": "Office then gym"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, []string{"9:00 Office", "19:00 Gym"}, texts(t, result))
}

func TestResultContent(t *testing.T) {
	plain := resultContent(engine.Result{Text: "only text"})
	require.Len(t, plain, 1)
	assert.Equal(t, "only text", plain[0].(*mcp.TextContent).Text)

	corrected := resultContent(engine.Result{
		Text:      "नमस्कार",
		Blocks:    []string{"नमस्कार"},
		Corrected: true,
		Ratio:     0.25,
	})
	require.Len(t, corrected, 2)
	assert.Equal(t, "नमस्कार", corrected[0].(*mcp.TextContent).Text)
	assert.Contains(t, corrected[1].(*mcp.TextContent).Text, "0.25")
}

func TestContextCancellation(t *testing.T) {
	s := New("srv", "1.0.0")
	serverTransport, _ := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.run(ctx, serverTransport)
	assert.ErrorIs(t, err, context.Canceled)
}
