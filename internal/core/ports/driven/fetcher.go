package driven

import "context"

// PageFetcher retrieves the readable text of a web page.
// It backs the internet context a gateway call may ask for.
type PageFetcher interface {
	// Fetch downloads url and returns its title and visible text.
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Page is the readable content of a fetched web page.
type Page struct {
	URL   string
	Title string
	Text  string
}
