// Package home provides the URL entry view with recent analyses.
package home

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

// View is the home screen: a URL prompt above the recent analyses.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	prompt    *input.Prompt
	recent    *list.ConversationList
	statusbar *status.Bar
	spinner   spinner.Model

	chat driving.ChatService
	ctx  context.Context

	width     int
	height    int
	focusList bool
}

// NewView creates a new home view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chat driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.HomeHelp())

	return &View{
		styles:    s,
		keymap:    km,
		prompt:    input.NewPrompt(s, "Website: ", "example.com"),
		recent:    list.NewConversationList(s),
		statusbar: bar,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Typing)),
		chat:      chat,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the prompt and loads the recent analyses.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.prompt.Init(), v.loadRecent())
}

// Update handles messages for the home view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RecentLoaded:
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err)
			return v, nil
		}
		v.recent.SetConversations(msg.Conversations)
		if v.recent.IsEmpty() {
			v.setFocusList(false)
		}
		return v, nil

	case messages.AnalysisCompleted:
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err)
			return v, nil
		}
		v.statusbar.Clear()
		v.prompt.Reset()
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
	if v.statusbar.Busy() {
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Switch):
		v.setFocusList(!v.focusList && !v.recent.IsEmpty())
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.Back):
		v.setFocusList(false)
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.Select):
		if v.focusList {
			id := v.recent.SelectedID()
			return v, func() tea.Msg { return messages.ConversationSelected{ID: id} }
		}
		return v, v.StartAnalysis(v.prompt.Value())

	case v.focusList && keymap.Matches(msg.String(), v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	}

	var cmd tea.Cmd
	if v.focusList {
		v.recent, cmd = v.recent.Update(msg)
		return v, cmd
	}
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

// StartAnalysis analyses rawURL in the background. Blank input is ignored.
func (v *View) StartAnalysis(rawURL string) tea.Cmd {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || v.chat == nil {
		return nil
	}

	v.statusbar.SetState(status.StateAnalysing)
	v.statusbar.SetMessage("")

	chat, ctx := v.chat, v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		conv, err := chat.Analyze(ctx, rawURL)
		return messages.AnalysisCompleted{Conversation: conv, Err: err}
	})
}

// loadRecent fetches the recent analyses.
func (v *View) loadRecent() tea.Cmd {
	if v.chat == nil {
		return nil
	}
	chat, ctx := v.chat, v.ctx
	return func() tea.Msg {
		convs, err := chat.Recent(ctx)
		return messages.RecentLoaded{Conversations: convs, Err: err}
	}
}

func (v *View) setFocusList(focus bool) {
	v.focusList = focus
	if focus {
		v.prompt.Blur()
		return
	}
	v.prompt.Focus()
}

// View renders the home screen.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("sitenav"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Ask anything about a website"))
	b.WriteString("\n\n")

	b.WriteString(v.prompt.View())
	b.WriteString("\n")
	if v.statusbar.State() == status.StateAnalysing {
		b.WriteString(v.spinner.View() + v.styles.Typing.Render(" Analysing website..."))
	}
	b.WriteString("\n\n")

	b.WriteString(v.styles.Subtitle.Render("Recent analyses"))
	b.WriteString("\n")
	b.WriteString(v.recent.View(v.focusList))

	body := b.String()
	gap := v.height - lipgloss.Height(body) - 1
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + "\n" + v.statusbar.View()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.prompt.SetWidth(width)
	v.recent.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset clears the prompt and any status.
func (v *View) Reset() {
	v.prompt.Reset()
	v.statusbar.Clear()
	v.setFocusList(false)
}

// Refresh reloads the recent analyses.
func (v *View) Refresh() tea.Cmd {
	return v.loadRecent()
}

// FocusList reports whether the recent list has focus.
func (v *View) FocusList() bool {
	return v.focusList
}

// Busy reports whether an analysis is in flight.
func (v *View) Busy() bool {
	return v.statusbar.Busy()
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
