package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrMissingChatService(t *testing.T) {
	assert.EqualError(t, ErrMissingChatService, "tui: chat service is required")
}
