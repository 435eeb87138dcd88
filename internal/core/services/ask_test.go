package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/core/ports/driving"
)

func TestAskService_Ask(t *testing.T) {
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return &driven.InvokeResponse{Text: "  Click **Pricing** in the header.  "}, nil
	}}
	svc := NewAskService(gw, time.Second, 0)

	answer, err := svc.Ask(context.Background(), driving.AskRequest{
		Question: "Where is pricing?",
		PageText: "Home Pricing Docs",
		URL:      "https://example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "Click **Pricing** in the header.", answer)

	calls := gw.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "You are a helpful website navigation assistant.", calls[0].System)
	assert.Equal(t, askMaxTokens, calls[0].MaxTokens)
	assert.False(t, calls[0].AddContextFromInternet)
	assert.Equal(t,
		"Website URL: https://example.com\n\nWebsite Content:\nHome Pricing Docs\n\nUser Question:\nWhere is pricing?",
		calls[0].Prompt)
}

func TestAskService_TruncatesPageText(t *testing.T) {
	gw := &mockGateway{}
	svc := NewAskService(gw, time.Second, 10)

	_, err := svc.Ask(context.Background(), driving.AskRequest{
		Question: "q",
		PageText: strings.Repeat("é", 25),
	})

	require.NoError(t, err)
	prompt := gw.calls()[0].Prompt
	assert.Contains(t, prompt, strings.Repeat("é", 10)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("é", 11))
}

func TestAskService_EmptyQuestion(t *testing.T) {
	gw := &mockGateway{}
	svc := NewAskService(gw, time.Second, 0)

	_, err := svc.Ask(context.Background(), driving.AskRequest{Question: "  "})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, gw.calls())
}

func TestAskService_GatewayErrors(t *testing.T) {
	cause := errors.New("quota exceeded")
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return nil, cause
	}}
	svc := NewAskService(gw, time.Second, 0)

	_, err := svc.Ask(context.Background(), driving.AskRequest{Question: "q"})
	assert.ErrorIs(t, err, cause)

	gw.invokeFn = func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return &driven.InvokeResponse{}, nil
	}
	_, err = svc.Ask(context.Background(), driving.AskRequest{Question: "q"})
	assert.ErrorIs(t, err, errEmptyReply)
}

func TestAskService_CustomPrompts(t *testing.T) {
	gw := &mockGateway{}
	svc := NewAskService(gw, time.Second, 0)
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptPageAsk:       "[%s] %s -> %s",
		driven.PromptPageAskSystem: "Be brief.",
	}})

	_, err := svc.Ask(context.Background(), driving.AskRequest{Question: "q", PageText: "text", URL: "u"})

	require.NoError(t, err)
	assert.Equal(t, "[u] text -> q", gw.calls()[0].Prompt)
	assert.Equal(t, "Be brief.", gw.calls()[0].System)
}

func TestAskService_InvokeLLM(t *testing.T) {
	gw := &mockGateway{invokeFn: func(_ context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
		if req.WantsJSON() {
			return &driven.InvokeResponse{Text: `{"title":"Docs"}`}, nil
		}
		return &driven.InvokeResponse{Text: "plain"}, nil
	}}
	svc := NewAskService(gw, time.Second, 0)

	result, err := svc.InvokeLLM(context.Background(), driving.InvokeLLMRequest{
		Prompt:                 "Analyze https://example.com",
		AddContextFromInternet: true,
		ContextURL:             "https://example.com",
		ResponseJSONSchema:     map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Docs"}`, string(result.Object))

	call := gw.calls()[0]
	assert.True(t, call.AddContextFromInternet)
	assert.Equal(t, "https://example.com", call.ContextURL)

	result, err = svc.InvokeLLM(context.Background(), driving.InvokeLLMRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "plain", result.Text)
	assert.Empty(t, result.Object)
}

func TestAskService_InvokeLLM_Errors(t *testing.T) {
	gw := &mockGateway{invokeFn: func(ctx context.Context, _ driven.InvokeRequest) (*driven.InvokeResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := NewAskService(gw, 10*time.Millisecond, 0)

	_, err := svc.InvokeLLM(context.Background(), driving.InvokeLLMRequest{Prompt: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.InvokeLLM(context.Background(), driving.InvokeLLMRequest{Prompt: "slow"})
	assert.ErrorIs(t, err, domain.ErrGatewayTimeout)
}
