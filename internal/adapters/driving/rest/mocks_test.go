package rest

import (
	"context"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	conv     *domain.Conversation
	convs    []domain.Conversation
	err      error
	lastURL  string
	lastID   string
	lastText string
	lastOpts domain.ListOptions
	ctxUser  *domain.User
}

func (m *mockChatService) Analyze(ctx context.Context, rawURL string) (*domain.Conversation, error) {
	m.lastURL = rawURL
	m.ctxUser = domain.UserFromContext(ctx)
	return m.conv, m.err
}

func (m *mockChatService) SendMessage(_ context.Context, id, content string) (*domain.Conversation, error) {
	m.lastID, m.lastText = id, content
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

// mockAskService is a mock implementation of driving.AskService, driving.ConciergeService
// and driving.LLMInvoker.
type mockAskService struct {
	answer     string
	result     *driving.InvokeLLMResult
	err        error
	lastAsk    driving.AskRequest
	lastInvoke driving.InvokeLLMRequest
	reply      *driving.ConciergeReply
	lastQuery  string
}

func (m *mockAskService) Ask(_ context.Context, req driving.AskRequest) (string, error) {
	m.lastAsk = req
	return m.answer, m.err
}

func (m *mockAskService) InvokeLLM(_ context.Context, req driving.InvokeLLMRequest) (*driving.InvokeLLMResult, error) {
	m.lastInvoke = req
	return m.result, m.err
}

func (m *mockAskService) Concierge(_ context.Context, query string) (*driving.ConciergeReply, error) {
	m.lastQuery = query
	return m.reply, m.err
}

// mockAccountService is a mock implementation of driving.AccountService.
type mockAccountService struct {
	token     string
	user      *domain.User
	err       error
	authErr   error
	lastEmail string
}

func (m *mockAccountService) Login(_ context.Context, email, _ string) (string, error) {
	m.lastEmail = email
	return m.token, m.err
}

func (m *mockAccountService) Logout(_ context.Context) error {
	return m.err
}

func (m *mockAccountService) Current(_ context.Context) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockAccountService) IssueToken(_ context.Context, email, _ string) (string, error) {
	m.lastEmail = email
	return m.token, m.err
}

func (m *mockAccountService) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	if token != m.token {
		return nil, domain.ErrAuthInvalid
	}
	return m.user, nil
}
