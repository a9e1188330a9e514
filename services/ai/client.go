// Package ai provides the provider selection façade for the platform's LLM
// integrations. Exactly one backend (HuggingFace, DeepSeek or OpenRouter) is
// active per process, chosen by configuration; callers obtain it through
// Facade.Client and never construct a backend directly.
package ai

import (
	"context"
	"encoding/json"
	"strings"
)

// Client is the uniform capability every provider backend exposes.
// The set of implementations is closed: huggingface, deepseek, openrouter.
type Client interface {
	// Name returns the provider identifier (e.g., "deepseek").
	Name() string

	// Complete generates a text completion. When req.Schema is set the
	// response carries a Structured payload extracted from the reply.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Embed generates a vector embedding for the given text.
	// Backends without an embedding API fail with an
	// unsupported-operation ProviderError.
	Embed(ctx context.Context, text string) ([]float64, error)

	// Available reports whether the backend has a credential configured.
	Available() bool
}

// CompletionRequest is a single completion call. Ephemeral, created per call.
type CompletionRequest struct {
	// Prompt is the input text. Must be non-empty.
	Prompt string

	// Model overrides the provider's configured default when set.
	Model string

	// Temperature controls randomness. Nil uses the provider default.
	Temperature *float64

	// MaxTokens limits response length. Zero uses the provider default.
	MaxTokens int

	// Schema, when set, constrains the response to a JSON payload
	// matching the descriptor.
	Schema *Schema
}

// Schema describes the shape of a structured-output response. Definition is
// a JSON Schema document embedded verbatim in the prompt; validation of the
// returned payload against it is the caller's concern.
type Schema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Definition  json.RawMessage `json:"definition"`
}

// Usage reports token consumption for a completion, when the backend
// provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the uniform completion result.
type CompletionResponse struct {
	// Text is the generated content.
	Text string `json:"text"`

	// Structured holds the extracted JSON payload for schema requests.
	// Nil for plain-text completions.
	Structured json.RawMessage `json:"structured,omitempty"`

	// Model is the model that actually served the call.
	Model string `json:"model"`

	// Provider identifies the backend that served the call.
	Provider string `json:"provider"`

	// Usage contains token consumption, when reported by the backend.
	Usage Usage `json:"usage"`
}

// IsEmpty reports whether the response carries no usable text.
func (r *CompletionResponse) IsEmpty() bool {
	return strings.TrimSpace(r.Text) == ""
}
