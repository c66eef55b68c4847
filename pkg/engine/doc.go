// Package engine is the composition root that assembles the completion
// pipeline from configuration and exposes it through a frontend-agnostic API.
// Frontends (terminal UI, HTTP, MCP) build a Session per user, run prompt
// tasks through Engine.Run, and observe progress through stage events without
// importing the lower-level packages that do the work.
package engine
