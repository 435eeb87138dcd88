package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

// Message roles. The set is closed: anything else is rejected by IsValid.
const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"

	// RoleAssistant marks a message produced by the assistant.
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is one of the two known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a stored role string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: unknown message role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// Message is a single entry in a conversation.
type Message struct {
	// Role is the author of the message.
	Role Role `json:"role"`

	// Content is plain text for user messages and markdown for assistant messages.
	Content string `json:"content"`

	// Timestamp is assigned when the message is constructed, not by the store.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a message stamped with the given time.
func NewMessage(role Role, content string, now time.Time) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	}
}

// Validate checks the message invariant: known role and non-empty content.
func (m Message) Validate() error {
	if !m.Role.IsValid() {
		return fmt.Errorf("%w: unknown message role %q", ErrInvalidInput, m.Role)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: message content is empty", ErrInvalidInput)
	}
	return nil
}

// ConversationStatus is the lifecycle tag of a conversation.
type ConversationStatus string

const (
	// StatusActive is the only status produced today.
	StatusActive ConversationStatus = "active"

	// StatusArchived is reserved. Nothing transitions a conversation into it.
	StatusArchived ConversationStatus = "archived"
)

// IsValid returns true if the status is recognised.
func (s ConversationStatus) IsValid() bool {
	return s == StatusActive || s == StatusArchived
}

// Conversation pairs a website with its message history and cached analysis.
type Conversation struct {
	// ID is assigned by the store on creation.
	ID string `json:"id"`

	// Title is the site title from analysis, or its hostname.
	Title string `json:"title"`

	// WebsiteURL is the normalised absolute URL under discussion.
	WebsiteURL string `json:"website_url"`

	// WebsiteContent is the serialised latest analysis.
	// Only the analysis step interprets it; everything else treats it as a blob.
	WebsiteContent string `json:"website_content"`

	// Messages is the ordered history, oldest first.
	Messages []Message `json:"messages"`

	// Status is the lifecycle tag.
	Status ConversationStatus `json:"status"`

	// CreatedBy is the email of the user who created the conversation.
	// Empty for anonymous use.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedDate is assigned by the store.
	CreatedDate time.Time `json:"created_date"`

	// UpdatedDate is assigned by the store on every write.
	UpdatedDate time.Time `json:"updated_date"`
}

// Clone returns a copy whose Messages slice can be appended to without
// touching the original.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	return &out
}

// LastMessage returns the newest message, or nil when the history is empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// DisplayTitle returns the title, falling back to a fixed label.
func (c *Conversation) DisplayTitle() string {
	if strings.TrimSpace(c.Title) == "" {
		return "Untitled Conversation"
	}
	return c.Title
}

// ConversationUpdate names the top-level fields to replace in a store update.
// Nil fields are left untouched.
type ConversationUpdate struct {
	Title          *string
	WebsiteContent *string
	Messages       []Message
	Status         *ConversationStatus
}

// IsEmpty returns true if the update carries no fields.
func (u ConversationUpdate) IsEmpty() bool {
	return u.Title == nil && u.WebsiteContent == nil && u.Messages == nil && u.Status == nil
}

// ConversationFilter selects conversations by exact field match.
type ConversationFilter struct {
	ID string
}

// Sortable conversation fields.
const (
	SortFieldCreatedDate = "created_date"
	SortFieldUpdatedDate = "updated_date"
	SortFieldTitle       = "title"
)

// DefaultSort lists the most recently updated conversations first.
const DefaultSort = "-" + SortFieldUpdatedDate

// RecentLimit is the number of conversations shown as recent analyses.
const RecentLimit = 3

// SortSpec is a parsed sort expression such as "-updated_date".
type SortSpec struct {
	Field      string
	Descending bool
}

// ParseSortSpec parses a field name optionally prefixed with "-".
// An empty string yields DefaultSort.
func ParseSortSpec(s string) (SortSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultSort
	}
	spec := SortSpec{Field: s}
	if strings.HasPrefix(s, "-") {
		spec.Descending = true
		spec.Field = s[1:]
	}
	switch spec.Field {
	case SortFieldCreatedDate, SortFieldUpdatedDate, SortFieldTitle:
		return spec, nil
	default:
		return SortSpec{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidInput, spec.Field)
	}
}

// String renders the sort back to its "-field" form.
func (s SortSpec) String() string {
	if s.Descending {
		return "-" + s.Field
	}
	return s.Field
}

// ListOptions controls conversation listing.
type ListOptions struct {
	// Sort is a field name optionally prefixed with "-" for descending order.
	Sort string

	// Limit caps the number of results. Zero or negative means no limit.
	Limit int
}

// ConversationSummary is the condensed view used by conversation listings.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	WebsiteURL   string    `json:"website_url"`
	MessageCount int       `json:"message_count"`
	LastMessage  string    `json:"last_message,omitempty"`
	UpdatedDate  time.Time `json:"updated_date"`
}

// previewLength bounds the last-message preview in summaries.
const previewLength = 140

// Summary condenses a conversation for list views.
func (c *Conversation) Summary() ConversationSummary {
	summary := ConversationSummary{
		ID:           c.ID,
		Title:        c.DisplayTitle(),
		WebsiteURL:   c.WebsiteURL,
		MessageCount: len(c.Messages),
		UpdatedDate:  c.UpdatedDate,
	}
	if summary.UpdatedDate.IsZero() {
		summary.UpdatedDate = c.CreatedDate
	}
	if last := c.LastMessage(); last != nil {
		summary.LastMessage = truncateRunes(strings.Join(strings.Fields(last.Content), " "), previewLength)
	}
	return summary
}

// truncateRunes shortens s to at most n runes, marking the cut with an ellipsis.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// Transcript renders the conversation as markdown, one section per message.
func (c *Conversation) Transcript() string {
	var b strings.Builder
	b.WriteString("# " + c.DisplayTitle() + "\n\n")
	if c.WebsiteURL != "" {
		b.WriteString(c.WebsiteURL + "\n")
	}
	for _, m := range c.Messages {
		label := "Assistant"
		if m.Role == RoleUser {
			label = "You"
		}
		b.WriteString("\n## " + label + "\n\n")
		b.WriteString(strings.TrimSpace(m.Content) + "\n")
	}
	return b.String()
}
