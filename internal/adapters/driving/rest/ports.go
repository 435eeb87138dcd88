package rest

import (
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the REST server exposes.
type Ports struct {
	// Chat runs the conversation lifecycle.
	Chat driving.ChatService

	// Ask answers one-off page questions for the browser extension.
	Ask driving.AskService

	// Concierge answers visitor questions for the configured website.
	Concierge driving.ConciergeService

	// Invoker exposes raw gateway calls.
	Invoker driving.LLMInvoker

	// Account issues and verifies bearer tokens.
	Account driving.AccountService
}

// Validate ensures all required ports are set.
// Ask, Concierge, Invoker and Account are optional; their routes answer 501 without them.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
