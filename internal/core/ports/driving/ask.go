package driving

import (
	"context"
	"encoding/json"
)

// AskService answers a one-off question about a page's text.
// It keeps no conversation state.
type AskService interface {
	// Ask returns the assistant's answer.
	Ask(ctx context.Context, req AskRequest) (string, error)
}

// AskRequest is a question about a page the caller already has open.
type AskRequest struct {
	Question string
	PageText string
	URL      string
}

// ConciergeService answers visitor questions for one configured website.
type ConciergeService interface {
	// Concierge answers query from the configured site context.
	Concierge(ctx context.Context, query string) (*ConciergeReply, error)
}

// ConciergeReply is a short answer plus ordered navigation steps.
type ConciergeReply struct {
	Answer string
	Steps  []string
}

// LLMInvoker exposes a single bounded gateway call to outer surfaces.
type LLMInvoker interface {
	// InvokeLLM runs one generation. With a schema the reply carries a JSON object.
	InvokeLLM(ctx context.Context, req InvokeLLMRequest) (*InvokeLLMResult, error)
}

// InvokeLLMRequest mirrors the gateway contract for outer surfaces.
type InvokeLLMRequest struct {
	Prompt                 string
	AddContextFromInternet bool
	ContextURL             string
	ResponseJSONSchema     map[string]any
}

// InvokeLLMResult is the reply to an InvokeLLMRequest.
type InvokeLLMResult struct {
	Text   string
	Object json.RawMessage
}
