package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sitenav/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewHome, "home"},
		{ViewChat, "chat"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Values(t *testing.T) {
	assert.Equal(t, ViewType(0), ViewHome)
	assert.Equal(t, ViewType(1), ViewChat)
	assert.Equal(t, ViewType(2), ViewHelp)
}

func TestReplyReceived_CarriesError(t *testing.T) {
	err := errors.New("timeout")
	msg := ReplyReceived{ConversationID: "c1", Err: err}

	assert.Equal(t, "c1", msg.ConversationID)
	assert.Nil(t, msg.Conversation)
	assert.ErrorIs(t, msg.Err, err)
}

func TestAnalysisCompleted_CarriesConversation(t *testing.T) {
	conv := &domain.Conversation{ID: "c1"}
	msg := AnalysisCompleted{Conversation: conv}

	assert.Same(t, conv, msg.Conversation)
	assert.NoError(t, msg.Err)
}
