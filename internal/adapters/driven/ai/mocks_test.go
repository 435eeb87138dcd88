package ai

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

type stubGateway struct {
	mu       sync.Mutex
	requests []driven.InvokeRequest
	err      error
	closed   bool
}

func (g *stubGateway) Invoke(_ context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &driven.InvokeResponse{Text: "ok"}, nil
}

func (g *stubGateway) ModelName() string         { return "stub" }
func (g *stubGateway) Ping(context.Context) error { return nil }
func (g *stubGateway) Close() error {
	g.closed = true
	return nil
}

func (g *stubGateway) calls() []driven.InvokeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]driven.InvokeRequest(nil), g.requests...)
}

type stubFetcher struct {
	page    *driven.Page
	err     error
	fetched []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*driven.Page, error) {
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return nil, f.err
	}
	if f.page == nil {
		return nil, errors.New("no page")
	}
	return f.page, nil
}
