package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	conv    *domain.Conversation
	convs   []domain.Conversation
	err     error
	deleted string
	opts    domain.ListOptions
	sent    string
}

func (m *mockChatService) Analyze(_ context.Context, _ string) (*domain.Conversation, error) {
	return m.conv, m.err
}

func (m *mockChatService) SendMessage(_ context.Context, _, content string) (*domain.Conversation, error) {
	m.sent = content
	return m.conv, m.err
}

func (m *mockChatService) Refresh(_ context.Context, _ string) (*domain.Conversation, error) {
	return m.conv, m.err
}

func (m *mockChatService) Delete(_ context.Context, id string) error {
	if m.err == nil {
		m.deleted = id
	}
	return m.err
}

func (m *mockChatService) Get(_ context.Context, _ string) (*domain.Conversation, error) {
	return m.conv, m.err
}

func (m *mockChatService) List(_ context.Context, opts domain.ListOptions) ([]domain.Conversation, error) {
	m.opts = opts
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

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetGatewayTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return domain.ErrInvalidInput
	}
	m.settings.Chat.GatewayTimeout = timeout
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// mockAccountService is a mock implementation of driving.AccountService.
type mockAccountService struct {
	user   *domain.User
	token  string
	err    error
	email  string
	logout bool
}

func (m *mockAccountService) Login(_ context.Context, email, _ string) (string, error) {
	m.email = email
	return m.token, m.err
}

func (m *mockAccountService) Logout(_ context.Context) error {
	m.logout = true
	return m.err
}

func (m *mockAccountService) Current(_ context.Context) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockAccountService) IssueToken(_ context.Context, _, _ string) (string, error) {
	return m.token, m.err
}

func (m *mockAccountService) Authenticate(_ context.Context, _ string) (*domain.User, error) {
	return m.user, m.err
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
		UpdatedDate: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// setServices installs services for one test and clears them afterwards.
func setServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

// execute runs the root command with args and stdin, returning combined output.
// Flags are restored to their defaults afterwards.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
