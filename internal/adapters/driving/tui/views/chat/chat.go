// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// chromeHeight is the number of lines used by everything but the transcript:
// header (2), typing line (1), prompt (3) and status bar (1).
const chromeHeight = 7

// View shows one conversation with a prompt for the next question.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	transcript viewport.Model
	prompt     *input.Prompt
	statusbar  *status.Bar
	spinner    spinner.Model

	chat driving.ChatService
	ctx  context.Context

	conv    *domain.Conversation
	pending string
	width   int
	height  int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chat driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.ChatHelp())

	return &View{
		styles:     s,
		keymap:     km,
		transcript: viewport.New(80, 24-chromeHeight),
		prompt:     input.NewPrompt(s, "> ", "Ask how to find something on this site..."),
		statusbar:  bar,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Typing)),
		chat:       chat,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the prompt.
func (v *View) Init() tea.Cmd {
	return v.prompt.Init()
}

// SetConversation shows conv and scrolls to its newest message.
func (v *View) SetConversation(conv *domain.Conversation) {
	v.conv = conv
	v.pending = ""
	v.prompt.Reset()
	v.statusbar.Clear()
	v.render()
}

// Conversation returns the conversation on screen.
func (v *View) Conversation() *domain.Conversation {
	return v.conv
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ReplyReceived:
		if !v.isCurrent(msg.ConversationID) {
			return v, nil
		}
		return v, v.applyResult(msg.Conversation, msg.Err)

	case messages.RefreshCompleted:
		if !v.isCurrent(msg.ConversationID) {
			return v, nil
		}
		return v, v.applyResult(msg.Conversation, msg.Err)

	case messages.ConversationLoaded:
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err)
			return v, nil
		}
		v.conv = msg.Conversation
		v.render()
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.statusbar.Busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHome} }

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.refresh()

	case keymap.Matches(key, v.keymap.Send):
		return v, v.send()
	}

	if v.statusbar.Busy() {
		return v, nil
	}
	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

// send submits the prompt as the next user turn.
func (v *View) send() tea.Cmd {
	content := strings.TrimSpace(v.prompt.Value())
	if content == "" || v.conv == nil || v.chat == nil || v.statusbar.Busy() {
		return nil
	}

	v.pending = content
	v.prompt.Reset()
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.render()

	chat, ctx, id := v.chat, v.ctx, v.conv.ID
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		conv, err := chat.SendMessage(ctx, id, content)
		return messages.ReplyReceived{ConversationID: id, Conversation: conv, Err: err}
	})
}

// refresh re-analyses the conversation's website.
func (v *View) refresh() tea.Cmd {
	if v.conv == nil || v.chat == nil || v.statusbar.Busy() {
		return nil
	}

	v.statusbar.SetState(status.StateRefreshing)
	v.statusbar.SetMessage("")

	chat, ctx, id := v.chat, v.ctx, v.conv.ID
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		conv, err := chat.Refresh(ctx, id)
		return messages.RefreshCompleted{ConversationID: id, Conversation: conv, Err: err}
	})
}

// applyResult shows a finished turn. After a failed reply the stored user
// message is reloaded so the transcript matches the store.
func (v *View) applyResult(conv *domain.Conversation, err error) tea.Cmd {
	v.pending = ""
	if err != nil {
		v.statusbar.SetError(err)
		v.render()

		var pe *domain.PersistError
		if errors.As(err, &pe) && pe.Step == domain.PersistStepAssistant {
			return v.reload()
		}
		return nil
	}

	v.statusbar.Clear()
	v.conv = conv
	v.render()
	return nil
}

// reload fetches the conversation from the store.
func (v *View) reload() tea.Cmd {
	chat, ctx, id := v.chat, v.ctx, v.conv.ID
	return func() tea.Msg {
		conv, err := chat.Get(ctx, id)
		return messages.ConversationLoaded{Conversation: conv, Err: err}
	}
}

func (v *View) isCurrent(id string) bool {
	return v.conv != nil && v.conv.ID == id
}

// render rebuilds the transcript and scrolls to the bottom.
func (v *View) render() {
	v.transcript.SetContent(v.renderMessages())
	v.transcript.GotoBottom()
}

func (v *View) renderMessages() string {
	if v.conv == nil {
		return ""
	}

	body := lipgloss.NewStyle().Width(v.width - 2).PaddingLeft(2)
	var b strings.Builder
	for _, m := range v.conv.Messages {
		b.WriteString(v.label(m.Role))
		b.WriteString("\n")
		b.WriteString(body.Render(strings.TrimSpace(m.Content)))
		b.WriteString("\n\n")
	}
	if v.pending != "" {
		b.WriteString(v.label(domain.RoleUser))
		b.WriteString("\n")
		b.WriteString(body.Render(v.pending))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) label(role domain.Role) string {
	if role == domain.RoleUser {
		return v.styles.UserLabel.Render("You")
	}
	return v.styles.AssistantLabel.Render("Assistant")
}

// View renders the chat screen.
func (v *View) View() string {
	var b strings.Builder

	title, url := "", ""
	if v.conv != nil {
		title, url = v.conv.DisplayTitle(), v.conv.WebsiteURL
	}
	b.WriteString(v.styles.Title.Render(title) + "  " + v.styles.Muted.Render(url))
	b.WriteString("\n\n")

	b.WriteString(v.transcript.View())
	b.WriteString("\n")

	switch v.statusbar.State() {
	case status.StateThinking:
		b.WriteString(v.spinner.View() + v.styles.Typing.Render(" Assistant is typing..."))
	case status.StateRefreshing:
		b.WriteString(v.spinner.View() + v.styles.Typing.Render(" Re-analysing website..."))
	}
	b.WriteString("\n")

	b.WriteString(v.prompt.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.transcript.Width = width
	v.transcript.Height = max(height-chromeHeight, 3)
	v.prompt.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.render()
}

// Busy reports whether a turn is in flight.
func (v *View) Busy() bool {
	return v.statusbar.Busy()
}

// Pending returns the message awaiting a reply.
func (v *View) Pending() string {
	return v.pending
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
