// Package mcpserver exposes the prompt features as MCP tools over stdio using
// the official MCP Go SDK.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/language"
	"github.com/germanamz/smartbuddy/pkg/prompts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Runner runs a prompt task. *engine.Engine implements it.
type Runner interface {
	Run(ctx context.Context, sess *engine.Session, task prompts.Task) (engine.Result, error)
	DefaultLanguage() language.Language
}

// Handler runs one tool call with its raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (engine.Result, error)

// Tool is an MCP tool definition with its handler.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// Server answers MCP tool calls.
type Server struct {
	sdk *mcp.Server
}

// New creates a Server advertising the given tools.
func New(name, version string, tools ...Tool) *Server {
	sdk := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)

	for _, t := range tools {
		sdk.AddTool(&mcp.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, callHandler(t.Handler))
	}

	return &Server{sdk: sdk}
}

// NewFeatureServer creates a Server with one tool per prompt feature.
func NewFeatureServer(name, version string, r Runner) *Server {
	return New(name, version, FeatureTools(r)...)
}

// ServeStdio serves on the process's stdin and stdout until ctx is cancelled
// or the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.run(ctx, &mcp.StdioTransport{})
}

func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	return s.sdk.Run(ctx, transport)
}

// callHandler adapts h to the SDK. Failures are reported as tool results
// flagged IsError so the calling model can read the message.
func callHandler(h Handler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}

		res, err := h(ctx, args)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		return &mcp.CallToolResult{Content: resultContent(res)}, nil
	}
}

// resultContent returns one text item per display block, followed by a note
// when the reply was rewritten into the selected script.
func resultContent(res engine.Result) []mcp.Content {
	blocks := res.Blocks
	if len(blocks) == 0 {
		blocks = []string{res.Text}
	}

	content := make([]mcp.Content, 0, len(blocks)+1)
	for _, b := range blocks {
		content = append(content, &mcp.TextContent{Text: b})
	}

	if res.Corrected {
		content = append(content, &mcp.TextContent{
			Text: fmt.Sprintf("(rewritten: first reply scored %.2f on the script check)", res.Ratio),
		})
	}

	return content
}
