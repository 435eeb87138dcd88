// Package mcp provides an MCP (Model Context Protocol) server adapter for sitenav.
// It lets AI assistants analyse websites and hold navigation conversations.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
