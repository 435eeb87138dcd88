// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sitenav/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitenav/internal/core/domain"
)

// ConversationList displays conversations in a navigable list.
type ConversationList struct {
	items    []domain.ConversationSummary
	selected int
	styles   *styles.Styles
	width    int
}

// NewConversationList creates a new conversation list component.
func NewConversationList(s *styles.Styles) *ConversationList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ConversationList{
		styles: s,
		width:  80,
	}
}

// Update handles list navigation messages.
func (l *ConversationList) Update(msg tea.Msg) (*ConversationList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list. Only the selection is highlighted when focused.
func (l *ConversationList) View(focused bool) string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No recent analyses")
	}

	lines := make([]string, 0, len(l.items)*2)
	for i := range l.items {
		lines = append(lines, l.renderItem(i, focused))
	}
	return strings.Join(lines, "\n")
}

// renderItem formats one conversation as a title line and a URL line.
func (l *ConversationList) renderItem(index int, focused bool) string {
	item := l.items[index]

	indicator := "  "
	titleStyle := l.styles.Normal
	if focused && index == l.selected {
		indicator = "> "
		titleStyle = l.styles.Selected
	}

	maxLen := l.width - 6
	if maxLen < 10 {
		maxLen = 10
	}
	title := clip(item.Title, maxLen)
	meta := fmt.Sprintf("%s · %d messages", item.WebsiteURL, item.MessageCount)

	return indicator + titleStyle.Render(title) + "\n" +
		l.styles.Muted.Render("    "+clip(meta, maxLen))
}

// SetConversations replaces the list contents.
func (l *ConversationList) SetConversations(convs []domain.Conversation) {
	l.items = make([]domain.ConversationSummary, len(convs))
	for i := range convs {
		l.items[i] = convs[i].Summary()
	}
	l.selected = 0
}

// Selected returns the index of the selected conversation.
func (l *ConversationList) Selected() int {
	return l.selected
}

// SelectedID returns the selected conversation id, or "" when empty.
func (l *ConversationList) SelectedID() string {
	if len(l.items) == 0 {
		return ""
	}
	return l.items[l.selected].ID
}

// MoveUp moves selection up.
func (l *ConversationList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *ConversationList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetWidth sets the component width.
func (l *ConversationList) SetWidth(width int) {
	l.width = width
}

// Count returns the number of conversations.
func (l *ConversationList) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *ConversationList) IsEmpty() bool {
	return len(l.items) == 0
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
