package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// conversationColumns lists the columns scanned by scanConversation.
const conversationColumns = `id, title, website_url, website_content, messages, status, created_by, created_at, updated_at`

// sortColumns maps sortable fields to their SQL columns.
var sortColumns = map[string]string{
	domain.SortFieldCreatedDate: "created_at",
	domain.SortFieldUpdatedDate: "updated_at",
	domain.SortFieldTitle:       "title",
}

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// List returns conversations ordered by sort, capped at limit when positive.
func (s *conversationStore) List(ctx context.Context, sortExpr string, limit int) ([]domain.Conversation, error) {
	spec, err := domain.ParseSortSpec(sortExpr)
	if err != nil {
		return nil, err
	}

	direction := "ASC"
	if spec.Descending {
		direction = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM conversations ORDER BY %s %s, id %s",
		conversationColumns, sortColumns[spec.Field], direction, direction)

	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	return scanConversationRows(rows)
}

// Filter returns the conversations matching filter.
func (s *conversationStore) Filter(ctx context.Context, filter domain.ConversationFilter) ([]domain.Conversation, error) {
	if filter.ID == "" {
		return s.List(ctx, domain.DefaultSort, 0)
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE id = ?", filter.ID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	defer rows.Close()

	return scanConversationRows(rows)
}

// Create stores a new conversation.
func (s *conversationStore) Create(ctx context.Context, conv domain.Conversation) (*domain.Conversation, error) {
	created := conv.Clone()
	created.ID = uuid.NewString()
	now := s.store.now().UTC()
	created.CreatedDate = now
	created.UpdatedDate = now
	if created.Status == "" {
		created.Status = domain.StatusActive
	}
	if created.Messages == nil {
		created.Messages = []domain.Message{}
	}

	messagesJSON, err := json.Marshal(created.Messages)
	if err != nil {
		return nil, fmt.Errorf("marshalling messages: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO conversations (id, title, website_url, website_content, messages, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, created.ID, created.Title, created.WebsiteURL, created.WebsiteContent, string(messagesJSON),
		string(created.Status), created.CreatedBy, now.UnixNano(), now.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	return created, nil
}

// Update replaces the set fields of update.
func (s *conversationStore) Update(
	ctx context.Context,
	id string,
	update domain.ConversationUpdate,
) (*domain.Conversation, error) {
	var messagesArg any
	if update.Messages != nil {
		messagesJSON, err := json.Marshal(update.Messages)
		if err != nil {
			return nil, fmt.Errorf("marshalling messages: %w", err)
		}
		messagesArg = string(messagesJSON)
	}
	var statusArg *string
	if update.Status != nil {
		status := string(*update.Status)
		statusArg = &status
	}

	result, err := s.store.db.ExecContext(ctx, `
		UPDATE conversations SET
			title = COALESCE(?, title),
			website_content = COALESCE(?, website_content),
			messages = COALESCE(?, messages),
			status = COALESCE(?, status),
			updated_at = ?
		WHERE id = ?
	`, nullString(update.Title), nullString(update.WebsiteContent), messagesArg, nullString(statusArg),
		s.store.now().UTC().UnixNano(), id)
	if err != nil {
		return nil, fmt.Errorf("updating conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE id = ?", id)
	return scanConversation(row)
}

// Delete removes a conversation.
func (s *conversationStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConversation scans a single conversation row.
func scanConversation(row rowScanner) (*domain.Conversation, error) {
	var conv domain.Conversation
	var messagesJSON, status string
	var createdAt, updatedAt int64

	if err := row.Scan(&conv.ID, &conv.Title, &conv.WebsiteURL, &conv.WebsiteContent,
		&messagesJSON, &status, &conv.CreatedBy, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	conv.Messages = []domain.Message{}
	if messagesJSON != "" && messagesJSON != jsonNull {
		if err := json.Unmarshal([]byte(messagesJSON), &conv.Messages); err != nil {
			return nil, fmt.Errorf("unmarshalling messages: %w", err)
		}
	}
	conv.Status = domain.ConversationStatus(status)
	conv.CreatedDate = time.Unix(0, createdAt).UTC()
	conv.UpdatedDate = time.Unix(0, updatedAt).UTC()

	return &conv, nil
}

// scanConversationRows scans multiple conversation rows.
func scanConversationRows(rows *sql.Rows) ([]domain.Conversation, error) {
	convs := []domain.Conversation{}
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	return convs, nil
}
