package mcp

import (
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat runs the conversation lifecycle.
	Chat driving.ChatService

	// Ask answers one-off page questions.
	Ask driving.AskService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	// Ask is optional; the ask_page tool is only registered with it.
	return nil
}
