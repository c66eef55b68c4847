// Package modeladapter defines the interface and types for LLM completion adapters.
//
// It contains:
//   - [Request], the system + user completion request
//   - [Completer] and the embeddable [ModelAdapter] base struct with HTTP helpers, auth and custom headers
//   - [StatusError], a non-2xx provider answer that knows whether it is worth retrying
//   - [github.com/germanamz/smartbuddy/pkg/modeladapter/usage], a thread-safe token usage tracker
//
// Concrete adapters live in separate packages under pkg/providers. Retrying is
// layered on top by [github.com/germanamz/smartbuddy/pkg/completion].
package modeladapter
