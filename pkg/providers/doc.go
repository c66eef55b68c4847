// Package providers groups the concrete completion backends.
//
// Each sub-package embeds [github.com/germanamz/smartbuddy/pkg/modeladapter.ModelAdapter]
// and implements its Completer interface for one vendor API:
//   - [github.com/germanamz/smartbuddy/pkg/providers/openai] for the OpenAI Chat Completions API
//   - [github.com/germanamz/smartbuddy/pkg/providers/grok] for xAI's OpenAI-compatible endpoint
//   - [github.com/germanamz/smartbuddy/pkg/providers/anthropic] for the Anthropic Messages API
package providers
