// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sitenav/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewHome is the URL entry and recent analyses view.
	ViewHome ViewType = iota
	// ViewChat is the conversation view.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnalysisCompleted carries the conversation created by an analysis.
type AnalysisCompleted struct {
	Conversation *domain.Conversation
	Err          error
}

// RecentLoaded carries the most recently updated conversations.
type RecentLoaded struct {
	Conversations []domain.Conversation
	Err           error
}

// ConversationSelected opens an existing conversation.
type ConversationSelected struct {
	ID string
}

// ConversationLoaded carries a conversation fetched for display.
type ConversationLoaded struct {
	Conversation *domain.Conversation
	Err          error
}

// ReplyReceived carries the conversation after a chat turn.
type ReplyReceived struct {
	ConversationID string
	Conversation   *domain.Conversation
	Err            error
}

// RefreshCompleted carries the conversation after a refresh.
type RefreshCompleted struct {
	ConversationID string
	Conversation   *domain.Conversation
	Err            error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
