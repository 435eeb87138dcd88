package ai

import (
	"context"
	"strings"

	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// Ensure ContextGateway implements the interface.
var _ driven.LLMGateway = (*ContextGateway)(nil)

// ContextGateway honours AddContextFromInternet by fetching the context page
// and appending its text to the prompt before forwarding the call.
// A failed fetch degrades to a call without live content.
type ContextGateway struct {
	next    driven.LLMGateway
	fetcher driven.PageFetcher
}

// NewContextGateway wraps next with page fetching.
func NewContextGateway(next driven.LLMGateway, fetcher driven.PageFetcher) *ContextGateway {
	return &ContextGateway{next: next, fetcher: fetcher}
}

// Invoke fetches live content when asked to, then forwards the call.
func (g *ContextGateway) Invoke(ctx context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
	if req.AddContextFromInternet && req.ContextURL != "" {
		page, err := g.fetcher.Fetch(ctx, req.ContextURL)
		switch {
		case err != nil:
			logger.Warn("Live context unavailable for %s: %v", req.ContextURL, err)
		case strings.TrimSpace(page.Text) != "":
			req.Prompt = withPageContent(req.Prompt, page)
			logger.Debug("Added %d chars of live content from %s", len(page.Text), page.URL)
		}
	}
	return g.next.Invoke(ctx, req)
}

// ModelName returns the wrapped gateway's model.
func (g *ContextGateway) ModelName() string {
	return g.next.ModelName()
}

// Ping checks the wrapped gateway.
func (g *ContextGateway) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}

// Close closes the wrapped gateway.
func (g *ContextGateway) Close() error {
	return g.next.Close()
}

func withPageContent(prompt string, page *driven.Page) string {
	var b strings.Builder
	b.WriteString(prompt)
	b.WriteString("\n\nLive page content")
	if page.Title != "" {
		b.WriteString(" (")
		b.WriteString(page.Title)
		b.WriteString(")")
	}
	b.WriteString(":\n")
	b.WriteString(page.Text)
	return b.String()
}
