package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// errEmptyReply is returned when the gateway answers with no text.
var errEmptyReply = errors.New("gateway returned an empty reply")

// invokeWithTimeout bounds one gateway call by timeout.
// A call cut off by the deadline surfaces as a *domain.GatewayTimeoutError.
func invokeWithTimeout(
	ctx context.Context,
	gateway driven.LLMGateway,
	timeout time.Duration,
	req driven.InvokeRequest,
) (*driven.InvokeResponse, error) {
	if gateway == nil {
		return nil, fmt.Errorf("%w: no gateway configured", domain.ErrLLMUnavailable)
	}
	if timeout <= 0 {
		timeout = domain.DefaultGatewayTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := gateway.Invoke(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &domain.GatewayTimeoutError{Timeout: timeout}
		}
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("gateway returned no response")
	}
	return resp, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// renderHistory renders the trailing window of messages as "role: content"
// lines, oldest first.
func renderHistory(messages []domain.Message, window int) string {
	if window > 0 && len(messages) > window {
		messages = messages[len(messages)-window:]
	}
	lines := make([]string, len(messages))
	for i, m := range messages {
		lines[i] = m.Role.String() + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

// truncateText cuts s to at most limit runes. A limit of zero or less keeps s.
func truncateText(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
