package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gocolly/colly/v2"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 15 * time.Second

// Config holds configuration for the page fetcher.
type Config struct {
	// UserAgent is sent with every request.
	UserAgent string

	// MaxChars truncates the extracted text. Zero keeps everything.
	MaxChars int

	// Timeout bounds a single fetch (default: 15s).
	Timeout time.Duration
}

// Fetcher downloads pages with colly and extracts their visible text.
type Fetcher struct {
	cfg Config
}

// NewFetcher creates a page fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Fetcher{cfg: cfg}
}

// Fetch downloads url and returns its title and visible text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*driven.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(f.cfg.Timeout)
	c.WithTransport(&contextTransport{ctx: ctx, next: http.DefaultTransport})

	var (
		body     []byte
		finalURL string
		fetchErr error
	)
	c.OnRequest(func(r *colly.Request) {
		if err := ctx.Err(); err != nil {
			fetchErr = fmt.Errorf("fetch %s: %w", url, err)
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL.String()
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("fetch %s: status %d: %w", url, r.StatusCode, err)
			return
		}
		fetchErr = fmt.Errorf("fetch %s: %w", url, err)
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("fetch %s: %w", url, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	content := string(body)
	page := &driven.Page{
		URL:   finalURL,
		Title: ExtractTitle(content),
		Text:  Truncate(ExtractText(content), f.cfg.MaxChars),
	}
	logger.Debug("Fetched %s (%d bytes, %d chars of text)", page.URL, len(body), utf8.RuneCountInString(page.Text))
	return page, nil
}

// contextTransport binds every request of a collector to ctx, so
// cancelling the caller aborts an in-flight download.
type contextTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}

// Truncate cuts s to at most limit runes. A limit of zero or less keeps s.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
