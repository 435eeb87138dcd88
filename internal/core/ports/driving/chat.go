package driving

import (
	"context"

	"github.com/custodia-labs/sitenav/internal/core/domain"
)

// ChatService runs the conversation lifecycle: analyse a site, exchange turns,
// refresh the analysis, and delete.
//
// Flows that write a conversation are serialised per conversation id in
// submission order. Flows on different ids run independently.
type ChatService interface {
	// Analyze normalises rawURL, analyses the site, and creates a conversation
	// seeded with a welcome message. Nothing is stored on failure.
	Analyze(ctx context.Context, rawURL string) (*domain.Conversation, error)

	// SendMessage appends the user's message and the assistant's reply.
	// The user message stays stored even when the reply fails.
	SendMessage(ctx context.Context, conversationID, content string) (*domain.Conversation, error)

	// Refresh re-analyses the conversation's site and appends a refreshed
	// message in a single write.
	Refresh(ctx context.Context, conversationID string) (*domain.Conversation, error)

	// Delete removes a conversation.
	Delete(ctx context.Context, conversationID string) error

	// Get returns one conversation.
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)

	// List returns conversations, most recently updated first by default.
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Conversation, error)

	// Recent returns the few most recently updated conversations.
	Recent(ctx context.Context) ([]domain.Conversation, error)
}
