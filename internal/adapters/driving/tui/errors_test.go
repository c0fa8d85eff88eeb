package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errors := []error{
		ErrMissingChatService,
		ErrMissingThreadService,
		ErrInvalidPorts,
	}

	seen := make(map[string]bool)
	for _, err := range errors {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestErrMissingChatService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingChatService.Error(), "chat service")
}

func TestErrMissingThreadService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingThreadService.Error(), "thread service")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
