package mcp

import (
	"context"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	conv  *domain.Conversation
	convs []domain.Conversation
	err   error

	lastURL     string
	lastID      string
	lastContent string
	lastOpts    domain.ListOptions
}

func (m *mockChatService) Analyze(_ context.Context, rawURL string) (*domain.Conversation, error) {
	m.lastURL = rawURL
	return m.conv, m.err
}

func (m *mockChatService) SendMessage(_ context.Context, id, content string) (*domain.Conversation, error) {
	m.lastID, m.lastContent = id, content
	return m.conv, m.err
}

func (m *mockChatService) Refresh(_ context.Context, id string) (*domain.Conversation, error) {
	m.lastID = id
	return m.conv, m.err
}

func (m *mockChatService) Delete(_ context.Context, id string) error {
	m.lastID = id
	return m.err
}

func (m *mockChatService) Get(_ context.Context, id string) (*domain.Conversation, error) {
	m.lastID = id
	return m.conv, m.err
}

func (m *mockChatService) List(_ context.Context, opts domain.ListOptions) ([]domain.Conversation, error) {
	m.lastOpts = opts
	return m.convs, m.err
}

func (m *mockChatService) Recent(_ context.Context) ([]domain.Conversation, error) {
	return m.convs, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer string
	err    error
	last   driving.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req driving.AskRequest) (string, error) {
	m.last = req
	return m.answer, m.err
}

func sampleConversation() *domain.Conversation {
	return &domain.Conversation{
		ID:         "conv-1",
		Title:      "Example",
		WebsiteURL: "https://example.com",
		Messages: []domain.Message{
			{Role: domain.RoleAssistant, Content: "Welcome to Example."},
			{Role: domain.RoleUser, Content: "Where is pricing?"},
			{Role: domain.RoleAssistant, Content: "Under Plans in the header."},
		},
	}
}
