package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/views/home"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// homeView is the URL entry and recent analyses view.
	homeView *home.View

	// chatView is the conversation view.
	chatView *chat.View

	// initialURL is analysed on start when set.
	initialURL string

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		homeView:    home.NewView(s, km, ports.Chat),
		chatView:    chat.NewView(s, km, ports.Chat),
		currentView: messages.ViewHome,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.homeView.WithContext(ctx)
	a.chatView.WithContext(ctx)
	return a
}

// WithURL makes the app analyse rawURL as soon as it starts.
func (a *App) WithURL(rawURL string) *App {
	a.initialURL = rawURL
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("sitenav"),
		a.homeView.Init(),
		a.homeView.StartAnalysis(a.initialURL),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewHome:
			a.homeView, cmd = a.homeView.Update(msg)
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewHome
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewHome {
			a.homeView.Reset()
			return a, a.homeView.Refresh()
		}
		return a, nil

	case messages.AnalysisCompleted:
		a.homeView, cmd = a.homeView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
			return a, cmd
		}
		a.openConversation(msg)
		return a, tea.Batch(cmd, a.chatView.Init())

	case messages.ConversationSelected:
		return a, a.loadConversation(msg.ID)

	case messages.ConversationLoaded:
		if msg.Err != nil {
			a.err = msg.Err
		}
		if a.currentView == messages.ViewChat {
			a.chatView, cmd = a.chatView.Update(msg)
			return a, cmd
		}
		if msg.Err != nil {
			a.homeView, cmd = a.homeView.Update(messages.ErrorOccurred{Err: msg.Err})
			return a, cmd
		}
		a.chatView.SetConversation(msg.Conversation)
		a.currentView = messages.ViewChat
		return a, a.chatView.Init()

	case messages.ReplyReceived, messages.RefreshCompleted:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.RecentLoaded:
		a.homeView, cmd = a.homeView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewChat {
			a.chatView, cmd = a.chatView.Update(msg)
			return a, cmd
		}
		a.homeView, cmd = a.homeView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewHome:
		a.homeView, cmd = a.homeView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// openConversation switches to the chat view for a fresh analysis.
func (a *App) openConversation(msg messages.AnalysisCompleted) {
	a.chatView.SetConversation(msg.Conversation)
	a.currentView = messages.ViewChat
}

// loadConversation fetches a conversation before opening it.
func (a *App) loadConversation(id string) tea.Cmd {
	chatService, ctx := a.ports.Chat, a.ctx
	return func() tea.Msg {
		conv, err := chatService.Get(ctx, id)
		return messages.ConversationLoaded{Conversation: conv, Err: err}
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.homeView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Home:
  (type)      Enter a website
  enter       Analyse website / open selected analysis
  tab         Switch between input and recent analyses
  ↑/↓         Navigate recent analyses

Chat:
  enter       Send message
  ctrl+r      Refresh the site analysis
  pgup/pgdn   Scroll transcript
  esc         Back to home

ctrl+c        Quit

[esc] back`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.homeView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
}
