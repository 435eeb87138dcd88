// Package ai provides factory functions and decorators for LLM gateway adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/sitenav/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/sitenav/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sitenav/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateGateway creates an LLM gateway and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateGateway(settings *domain.LLMSettings) (driven.LLMGateway, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	gw, err := CreateGateway(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'sitenav settings wizard' to fix",
			domain.ErrLLMUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := gw.Ping(ctx); err != nil {
		gw.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'sitenav settings wizard' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return gw, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a gateway and pinging it.
// This is intended for use in the settings wizard to validate credentials on configuration.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	gw, err := CreateGateway(settings)
	if err != nil {
		return err
	}
	defer gw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return gw.Ping(ctx)
}

// CreateGateway creates the gateway for the configured provider.
// Returns nil if the provider is not configured.
func CreateGateway(settings *domain.LLMSettings) (driven.LLMGateway, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.New(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.New(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.New(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// Decorate wraps a gateway with rate limiting and, when a fetcher is
// given, live page context. A nil gateway is returned unchanged.
func Decorate(gw driven.LLMGateway, settings domain.LLMSettings, fetcher driven.PageFetcher) driven.LLMGateway {
	if gw == nil {
		return nil
	}
	if fetcher != nil {
		gw = NewContextGateway(gw, fetcher)
	}
	return NewRateLimitedGateway(gw, RateLimitConfig{
		RequestsPerSecond: settings.RequestsPerSecond,
		Burst:             settings.Burst,
	})
}
