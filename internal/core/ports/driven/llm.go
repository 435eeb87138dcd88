// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"
	"encoding/json"
)

// LLMGateway is the external text and structured-generation service.
// Latency and failure are opaque to callers; flows bound each call with a deadline.
//
// Implementations may include:
//   - OpenAI (and compatible APIs)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMGateway interface {
	// Invoke runs one generation. With ResponseJSONSchema set the result carries
	// a JSON object in Object; otherwise free text in Text.
	Invoke(ctx context.Context, req InvokeRequest) (*InvokeResponse, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// InvokeRequest is a single gateway call.
type InvokeRequest struct {
	// Prompt is the user-facing prompt text.
	Prompt string

	// System is an optional system instruction sent ahead of the prompt.
	System string

	// AddContextFromInternet permits the gateway to consult live web content.
	AddContextFromInternet bool

	// ContextURL is the page the internet context should come from, if known.
	ContextURL string

	// ResponseJSONSchema requests a JSON object conforming to this schema.
	ResponseJSONSchema map[string]any

	// SchemaName labels the schema for providers that require a name.
	SchemaName string

	// MaxTokens caps the reply length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// WantsJSON returns true if the request asks for structured output.
func (r InvokeRequest) WantsJSON() bool {
	return len(r.ResponseJSONSchema) > 0
}

// InvokeResponse is the result of a gateway call.
type InvokeResponse struct {
	// Text is the free-text reply, or the raw JSON source for structured calls.
	Text string

	// Object is the decoded JSON object for structured calls.
	Object json.RawMessage
}
