package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitenav/internal/core/domain"
)

type mockChat struct {
	conv        *domain.Conversation
	err         error
	sent        string
	refreshedID string
	gotID       string
}

func (m *mockChat) Analyze(_ context.Context, _ string) (*domain.Conversation, error) {
	return m.conv, m.err
}

func (m *mockChat) SendMessage(_ context.Context, _, content string) (*domain.Conversation, error) {
	m.sent = content
	return m.conv, m.err
}

func (m *mockChat) Refresh(_ context.Context, id string) (*domain.Conversation, error) {
	m.refreshedID = id
	return m.conv, m.err
}

func (m *mockChat) Delete(_ context.Context, _ string) error { return m.err }

func (m *mockChat) Get(_ context.Context, id string) (*domain.Conversation, error) {
	m.gotID = id
	return m.conv, nil
}

func (m *mockChat) List(_ context.Context, _ domain.ListOptions) ([]domain.Conversation, error) {
	return nil, m.err
}

func (m *mockChat) Recent(_ context.Context) ([]domain.Conversation, error) {
	return nil, m.err
}

func sampleConversation() *domain.Conversation {
	return &domain.Conversation{
		ID:         "c1",
		Title:      "Example",
		WebsiteURL: "https://example.com",
		Messages: []domain.Message{
			{Role: domain.RoleAssistant, Content: "Welcome to Example."},
		},
	}
}

func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c != nil {
			out = append(out, c())
		}
	}
	return out
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

func newChatView(chat *mockChat) *View {
	v := NewView(nil, nil, chat)
	v.SetDimensions(100, 30)
	v.SetConversation(sampleConversation())
	return v
}

func typeText(v *View, text string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return v
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockChat{})

	require.NotNil(t, v)
	assert.Nil(t, v.Conversation())
	assert.False(t, v.Busy())
	assert.NotNil(t, v.Init())
}

func TestView_SetConversation_RendersTranscript(t *testing.T) {
	v := newChatView(&mockChat{})

	out := v.View()

	assert.Contains(t, out, "Example")
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "Welcome to Example.")
	assert.Contains(t, out, "Assistant")
}

func TestView_Send(t *testing.T) {
	reply := sampleConversation()
	reply.Messages = append(reply.Messages,
		domain.Message{Role: domain.RoleUser, Content: "Where is pricing?"},
		domain.Message{Role: domain.RoleAssistant, Content: "Under Plans."},
	)
	chat := &mockChat{conv: reply}
	v := newChatView(chat)
	v = typeText(v, "Where is pricing?")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, v.Busy())
	assert.Equal(t, status.StateThinking, v.Status().State())
	assert.Equal(t, "Where is pricing?", v.Pending())
	assert.Contains(t, v.View(), "Assistant is typing...")

	got, ok := findMsg[messages.ReplyReceived](runBatch(cmd))
	require.True(t, ok)
	assert.Equal(t, "Where is pricing?", chat.sent)
	assert.Equal(t, "c1", got.ConversationID)

	v, _ = v.Update(got)

	assert.False(t, v.Busy())
	assert.Empty(t, v.Pending())
	assert.Len(t, v.Conversation().Messages, 3)
	assert.Contains(t, v.View(), "Under Plans.")
}

func TestView_SendBlankIgnored(t *testing.T) {
	v := newChatView(&mockChat{})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Busy())
}

func TestView_SendWhileBusyIgnored(t *testing.T) {
	v := newChatView(&mockChat{conv: sampleConversation()})
	v = typeText(v, "first")
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v = typeText(v, "second")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, "first", v.Pending())
}

func TestView_ReplyError(t *testing.T) {
	t.Run("assistant step failure reloads conversation", func(t *testing.T) {
		stored := sampleConversation()
		stored.Messages = append(stored.Messages, domain.Message{Role: domain.RoleUser, Content: "hi"})
		chat := &mockChat{conv: stored}
		v := newChatView(chat)

		err := &domain.PersistError{ConversationID: "c1", Step: domain.PersistStepAssistant, Err: &domain.GatewayTimeoutError{}}
		v, cmd := v.Update(messages.ReplyReceived{ConversationID: "c1", Err: err})

		assert.Equal(t, status.StateError, v.Status().State())
		require.NotNil(t, cmd)
		loaded, ok := cmd().(messages.ConversationLoaded)
		require.True(t, ok)
		assert.Equal(t, "c1", chat.gotID)

		v, _ = v.Update(loaded)
		assert.Len(t, v.Conversation().Messages, 2)
		assert.Equal(t, status.StateError, v.Status().State())
	})

	t.Run("other failure keeps conversation", func(t *testing.T) {
		v := newChatView(&mockChat{})

		v, cmd := v.Update(messages.ReplyReceived{ConversationID: "c1", Err: domain.ErrNotFound})

		assert.Nil(t, cmd)
		assert.Len(t, v.Conversation().Messages, 1)
	})
}

func TestView_ReplyForOtherConversationIgnored(t *testing.T) {
	v := newChatView(&mockChat{})

	v, _ = v.Update(messages.ReplyReceived{ConversationID: "other", Err: errors.New("x")})

	assert.Equal(t, status.StateReady, v.Status().State())
}

func TestView_Refresh(t *testing.T) {
	refreshed := sampleConversation()
	refreshed.Messages = append(refreshed.Messages, domain.Message{Role: domain.RoleAssistant, Content: "Refreshed."})
	chat := &mockChat{conv: refreshed}
	v := newChatView(chat)

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Equal(t, status.StateRefreshing, v.Status().State())
	done, ok := findMsg[messages.RefreshCompleted](runBatch(cmd))
	require.True(t, ok)
	assert.Equal(t, "c1", chat.refreshedID)

	v, _ = v.Update(done)

	assert.False(t, v.Busy())
	assert.Contains(t, v.View(), "Refreshed.")
}

func TestView_EscGoesHome(t *testing.T) {
	v := newChatView(&mockChat{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHome}, cmd())
}

func TestView_ConversationLoadError(t *testing.T) {
	v := newChatView(&mockChat{})

	v, _ = v.Update(messages.ConversationLoaded{Err: errors.New("gone")})

	assert.Equal(t, "gone", v.Status().Message())
	assert.NotNil(t, v.Conversation())
}
