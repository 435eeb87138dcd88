package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

const hotelContext = `The Grandeur Hotel website:
- Rooms page lists Standard, Deluxe and Suites
- Pricing page shows weekday and weekend rates
- Contact page gives phone and email`

func newConciergeService(gw *mockGateway, siteContext string) *AskService {
	svc := NewAskService(gw, time.Second, 0)
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptSiteContext: siteContext,
	}})
	return svc
}

func TestAskService_Concierge_Structured(t *testing.T) {
	gw := &mockGateway{invokeFn: func(_ context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
		data, _ := json.Marshal(map[string]any{
			"answer": " Weekend rates are on the Pricing page. ",
			"steps":  []string{"Open the menu", " ", "Choose Pricing"},
		})
		return &driven.InvokeResponse{Text: string(data), Object: data}, nil
	}}
	svc := newConciergeService(gw, hotelContext)

	reply, err := svc.Concierge(context.Background(), "  How much is a weekend stay?  ")

	require.NoError(t, err)
	assert.Equal(t, "Weekend rates are on the Pricing page.", reply.Answer)
	assert.Equal(t, []string{"Open the menu", "Choose Pricing"}, reply.Steps)

	calls := gw.calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].WantsJSON())
	assert.Equal(t, conciergeSchemaName, calls[0].SchemaName)
	assert.Equal(t, hotelContext, calls[0].System)
	assert.Contains(t, calls[0].Prompt, "CONTEXT:\n"+hotelContext)
	assert.Contains(t, calls[0].Prompt, "USER QUESTION:\nHow much is a weekend stay?")
}

func TestAskService_Concierge_FreeTextFallback(t *testing.T) {
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return &driven.InvokeResponse{Text: "Rooms are listed on the Rooms page.\n\nSteps:\n1. Click Rooms\n2) Pick a room type"}, nil
	}}
	svc := newConciergeService(gw, hotelContext)

	reply, err := svc.Concierge(context.Background(), "Which rooms exist?")

	require.NoError(t, err)
	assert.Equal(t, "Rooms are listed on the Rooms page.", reply.Answer)
	assert.Equal(t, []string{"Click Rooms", "Pick a room type"}, reply.Steps)
}

func TestAskService_Concierge_NoSteps(t *testing.T) {
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return &driven.InvokeResponse{Text: "Call the front desk."}, nil
	}}
	svc := newConciergeService(gw, hotelContext)

	reply, err := svc.Concierge(context.Background(), "Can I bring a dog?")

	require.NoError(t, err)
	assert.Equal(t, "Call the front desk.", reply.Answer)
	assert.NotNil(t, reply.Steps)
	assert.Empty(t, reply.Steps)
}

func TestAskService_Concierge_NotConfigured(t *testing.T) {
	gw := &mockGateway{}

	_, err := newConciergeService(gw, "   ").Concierge(context.Background(), "hi")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewAskService(gw, time.Second, 0).Concierge(context.Background(), "hi")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	assert.Empty(t, gw.calls())
}

func TestAskService_Concierge_EmptyQuery(t *testing.T) {
	gw := &mockGateway{}

	_, err := newConciergeService(gw, hotelContext).Concierge(context.Background(), " ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, gw.calls())
}

func TestAskService_Concierge_GatewayError(t *testing.T) {
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return nil, errors.New("provider down")
	}}

	_, err := newConciergeService(gw, hotelContext).Concierge(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestAskService_Concierge_EmptyReply(t *testing.T) {
	gw := &mockGateway{invokeFn: func(context.Context, driven.InvokeRequest) (*driven.InvokeResponse, error) {
		return &driven.InvokeResponse{Text: "  "}, nil
	}}

	_, err := newConciergeService(gw, hotelContext).Concierge(context.Background(), "hi")
	assert.ErrorIs(t, err, errEmptyReply)
}
