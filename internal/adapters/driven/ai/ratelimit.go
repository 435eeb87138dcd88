package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// Ensure RateLimitedGateway implements the interface.
var _ driven.LLMGateway = (*RateLimitedGateway)(nil)

// defaultBackoff is applied after the provider reports a quota error.
const defaultBackoff = 30 * time.Second

// RateLimitConfig holds rate limiting configuration for gateway calls.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit. Zero or less disables limiting.
	RequestsPerSecond float64
	// Burst is the maximum burst size.
	Burst int
}

// RateLimitedGateway throttles calls to another gateway with a token bucket
// and backs off after the provider answers with a rate limit error.
type RateLimitedGateway struct {
	next    driven.LLMGateway
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimitedGateway wraps next with the given limits.
func NewRateLimitedGateway(next driven.LLMGateway, cfg RateLimitConfig) *RateLimitedGateway {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &RateLimitedGateway{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		backoff: defaultBackoff,
	}
}

// Invoke waits for a token, then forwards the call.
func (g *RateLimitedGateway) Invoke(ctx context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := g.next.Invoke(ctx, req)
	if err != nil && isRateLimitError(err) {
		g.recordRateLimit()
		return nil, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return resp, err
}

// wait blocks until a call can be made without exceeding the rate limit.
// It also respects any backoff period set by recordRateLimit.
func (g *RateLimitedGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	retryAt := g.retryAt
	g.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return g.limiter.Wait(ctx)
}

func (g *RateLimitedGateway) recordRateLimit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.retryAt = time.Now().Add(g.backoff)
	logger.Warn("LLM provider rate limited, backing off for %s", g.backoff)
}

// ModelName returns the wrapped gateway's model.
func (g *RateLimitedGateway) ModelName() string {
	return g.next.ModelName()
}

// Ping bypasses the limiter.
func (g *RateLimitedGateway) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}

// Close closes the wrapped gateway.
func (g *RateLimitedGateway) Close() error {
	return g.next.Close()
}

// isRateLimitError reports whether a provider error signals an exhausted quota.
// Providers surface the HTTP status in their error text.
func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "status 429") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "rate limit")
}
