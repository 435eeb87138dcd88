package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]domain.Conversation
	now           func() time.Time
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return NewConversationStoreWithClock(time.Now)
}

// NewConversationStoreWithClock creates a store that stamps dates with now.
func NewConversationStoreWithClock(now func() time.Time) *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]domain.Conversation),
		now:           now,
	}
}

// List returns conversations ordered by sort, capped at limit when positive.
func (s *ConversationStore) List(_ context.Context, sortExpr string, limit int) ([]domain.Conversation, error) {
	spec, err := domain.ParseSortSpec(sortExpr)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	result := make([]domain.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		result = append(result, *conv.Clone())
	}
	s.mu.RUnlock()

	SortConversations(result, spec)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Filter returns the conversations matching filter.
func (s *ConversationStore) Filter(_ context.Context, filter domain.ConversationFilter) ([]domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.ID != "" {
		conv, ok := s.conversations[filter.ID]
		if !ok {
			return []domain.Conversation{}, nil
		}
		return []domain.Conversation{*conv.Clone()}, nil
	}

	result := make([]domain.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		result = append(result, *conv.Clone())
	}
	return result, nil
}

// Create stores a new conversation.
func (s *ConversationStore) Create(_ context.Context, conv domain.Conversation) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := conv.Clone()
	stored.ID = uuid.NewString()
	now := s.now().UTC()
	stored.CreatedDate = now
	stored.UpdatedDate = now
	if stored.Status == "" {
		stored.Status = domain.StatusActive
	}

	s.conversations[stored.ID] = *stored
	return stored.Clone(), nil
}

// Update replaces the set fields of update.
func (s *ConversationStore) Update(
	_ context.Context,
	id string,
	update domain.ConversationUpdate,
) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	stored := conv.Clone()
	if update.Title != nil {
		stored.Title = *update.Title
	}
	if update.WebsiteContent != nil {
		stored.WebsiteContent = *update.WebsiteContent
	}
	if update.Messages != nil {
		stored.Messages = append([]domain.Message(nil), update.Messages...)
	}
	if update.Status != nil {
		stored.Status = *update.Status
	}
	stored.UpdatedDate = s.now().UTC()

	s.conversations[id] = *stored
	return stored.Clone(), nil
}

// Delete removes a conversation.
func (s *ConversationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.conversations, id)
	return nil
}

// SortConversations orders convs in place by spec. Ties fall back to id.
func SortConversations(convs []domain.Conversation, spec domain.SortSpec) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i], convs[j]
		var cmp int
		switch spec.Field {
		case domain.SortFieldTitle:
			cmp = strings.Compare(a.Title, b.Title)
		case domain.SortFieldCreatedDate:
			cmp = a.CreatedDate.Compare(b.CreatedDate)
		default:
			cmp = a.UpdatedDate.Compare(b.UpdatedDate)
		}
		if cmp == 0 {
			cmp = strings.Compare(a.ID, b.ID)
		}
		if spec.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}
