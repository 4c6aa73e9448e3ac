package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingConflictMessage(t *testing.T) {
	// The two directions get distinct messages so the caller knows whether
	// to wait or to check their inbox
	sent := pendingConflictMessage(pendingSent)
	received := pendingConflictMessage(pendingReceived)

	assert.NotEmpty(t, sent)
	assert.NotEmpty(t, received)
	assert.NotEqual(t, sent, received)

	assert.Empty(t, pendingConflictMessage(pendingNone))
}
