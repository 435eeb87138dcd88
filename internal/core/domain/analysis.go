package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Analysis is the structured description of a website produced by the LLM.
type Analysis struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	MainSections    []string `json:"main_sections"`
	NavigationItems []string `json:"navigation_items"`
	KeyFeatures     []string `json:"key_features"`
}

// Placeholders used when an analysis list is empty.
const (
	noSectionsText   = "No sections detected"
	noNavigationText = "No navigation items detected"
)

// welcomeClosing invites the first question after a new analysis.
const welcomeClosing = `How can I help you navigate this website? You can ask me things like:
- "Where can I find pricing information?"
- "How do I create an account?"
- "What features does this website offer?"`

// refreshClosing ends the message appended by a refresh.
const refreshClosing = "What would you like to know about this website?"

// AnalysisSchema returns the JSON schema requested from the LLM gateway
// for structured site extraction.
func AnalysisSchema() map[string]any {
	list := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":            map[string]any{"type": "string"},
			"description":      map[string]any{"type": "string"},
			"main_sections":    list,
			"navigation_items": list,
			"key_features":     list,
		},
		"required": []string{
			"title", "description", "main_sections", "navigation_items", "key_features",
		},
		"additionalProperties": false,
	}
}

// DecodeAnalysis parses a gateway object or a stored website_content blob.
// Empty input and JSON null decode to a zero Analysis.
func DecodeAnalysis(data []byte) (Analysis, error) {
	var a Analysis
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return a, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	a.MainSections = compact(a.MainSections)
	a.NavigationItems = compact(a.NavigationItems)
	a.KeyFeatures = compact(a.KeyFeatures)
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	return a, nil
}

// Encode serialises the analysis into the opaque website_content blob.
func (a Analysis) Encode() (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}
	return string(data), nil
}

// IsEmpty returns true if the extraction produced nothing at all.
func (a Analysis) IsEmpty() bool {
	return a.Title == "" && a.Description == "" &&
		len(a.MainSections) == 0 && len(a.NavigationItems) == 0 && len(a.KeyFeatures) == 0
}

// TitleOr returns the analysed title or the fallback when it is blank.
func (a Analysis) TitleOr(fallback string) string {
	if a.Title != "" {
		return a.Title
	}
	return fallback
}

// WelcomeMessage renders the first assistant message of a new conversation.
// The title falls back to the hostname of websiteURL.
func (a Analysis) WelcomeMessage(websiteURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I've analyzed **%s**! Here's what I found:\n\n", a.TitleOr(Hostname(websiteURL)))
	a.writeSections(&b)
	b.WriteString("\n\n")
	b.WriteString(welcomeClosing)
	return b.String()
}

// RefreshMessage renders the assistant message appended by a refresh.
// The title falls back to the full website URL.
func (a Analysis) RefreshMessage(websiteURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I've refreshed my analysis of **%s**!\n\n", a.TitleOr(websiteURL))
	a.writeSections(&b)
	b.WriteString("\n\n")
	b.WriteString(refreshClosing)
	return b.String()
}

func (a Analysis) writeSections(b *strings.Builder) {
	b.WriteString("**Main Sections:**\n")
	b.WriteString(bulletList(a.MainSections, noSectionsText))
	b.WriteString("\n\n**Navigation:**\n")
	b.WriteString(bulletList(a.NavigationItems, noNavigationText))
}

func bulletList(items []string, placeholder string) string {
	if len(items) == 0 {
		return placeholder
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// compact trims entries and drops the blank ones.
func compact(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
