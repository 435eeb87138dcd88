package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// Ensure AskService implements the interfaces.
var (
	_ driving.AskService       = (*AskService)(nil)
	_ driving.LLMInvoker       = (*AskService)(nil)
	_ driving.ConciergeService = (*AskService)(nil)
	_ driven.PromptStoreAware  = (*AskService)(nil)
)

// askMaxTokens keeps page answers short.
const askMaxTokens = 200

// AskService answers questions about page text supplied by the caller.
type AskService struct {
	gateway      driven.LLMGateway
	promptStore  driven.PromptStore
	timeout      time.Duration
	maxPageChars int
}

// NewAskService creates an ask service. Page text longer than maxPageChars
// runes is truncated; zero uses domain.DefaultMaxPageChars.
func NewAskService(gateway driven.LLMGateway, timeout time.Duration, maxPageChars int) *AskService {
	if maxPageChars <= 0 {
		maxPageChars = domain.DefaultMaxPageChars
	}
	return &AskService{
		gateway:      gateway,
		timeout:      timeout,
		maxPageChars: maxPageChars,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *AskService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ask returns the assistant's answer to req.Question about req.PageText.
func (s *AskService) Ask(ctx context.Context, req driving.AskRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	pageText := truncateText(req.PageText, s.maxPageChars)
	logger.Debug("Ask about %s with %d chars of page text", req.URL, len(pageText))

	prompt := fmt.Sprintf(
		loadPrompt(s.promptStore, driven.PromptPageAsk, defaultPageAskPrompt),
		strings.TrimSpace(req.URL),
		pageText,
		question,
	)

	resp, err := invokeWithTimeout(ctx, s.gateway, s.timeout, driven.InvokeRequest{
		Prompt:    prompt,
		System:    loadPrompt(s.promptStore, driven.PromptPageAskSystem, defaultPageAskSystemPrompt),
		MaxTokens: askMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}

	answer := strings.TrimSpace(resp.Text)
	if answer == "" {
		return "", fmt.Errorf("ask: %w", errEmptyReply)
	}
	return answer, nil
}

// InvokeLLM forwards one caller-built request to the gateway under the
// configured deadline.
func (s *AskService) InvokeLLM(ctx context.Context, req driving.InvokeLLMRequest) (*driving.InvokeLLMResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidInput)
	}

	resp, err := invokeWithTimeout(ctx, s.gateway, s.timeout, driven.InvokeRequest{
		Prompt:                 req.Prompt,
		AddContextFromInternet: req.AddContextFromInternet,
		ContextURL:             req.ContextURL,
		ResponseJSONSchema:     req.ResponseJSONSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke: %w", err)
	}

	result := &driving.InvokeLLMResult{Text: resp.Text, Object: resp.Object}
	if len(req.ResponseJSONSchema) > 0 && len(result.Object) == 0 {
		result.Object = json.RawMessage(resp.Text)
	}
	return result, nil
}
