package driven

import (
	"context"

	"github.com/custodia-labs/sitenav/internal/core/domain"
)

// ConversationStore persists conversations as whole documents keyed by id.
// There is no patch or compare-and-swap; callers serialise writers per id.
type ConversationStore interface {
	// List returns conversations ordered by sort ("field" or "-field").
	// A limit of zero or less returns every conversation.
	List(ctx context.Context, sort string, limit int) ([]domain.Conversation, error)

	// Filter returns the conversations matching every set field of the filter.
	// Filtering by id yields zero or one result.
	Filter(ctx context.Context, filter domain.ConversationFilter) ([]domain.Conversation, error)

	// Create stores a new conversation, assigning ID, CreatedDate and UpdatedDate.
	Create(ctx context.Context, conv domain.Conversation) (*domain.Conversation, error)

	// Update replaces the non-nil fields of update and bumps UpdatedDate.
	// Returns domain.ErrNotFound if the id does not exist.
	Update(ctx context.Context, id string, update domain.ConversationUpdate) (*domain.Conversation, error)

	// Delete removes a conversation.
	// Returns domain.ErrNotFound if the id does not exist.
	Delete(ctx context.Context, id string) error
}
