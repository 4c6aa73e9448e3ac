package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusTerminal(t *testing.T) {
	assert.False(t, RequestPending.Terminal())
	assert.True(t, RequestAccepted.Terminal())
	assert.True(t, RequestDeclined.Terminal())
}

func TestRequestStatusTransitions(t *testing.T) {
	// Pending can be resolved either way
	assert.True(t, RequestPending.CanTransitionTo(RequestAccepted))
	assert.True(t, RequestPending.CanTransitionTo(RequestDeclined))

	// Resolved requests stay resolved
	assert.False(t, RequestAccepted.CanTransitionTo(RequestDeclined))
	assert.False(t, RequestAccepted.CanTransitionTo(RequestPending))
	assert.False(t, RequestDeclined.CanTransitionTo(RequestAccepted))
	assert.False(t, RequestDeclined.CanTransitionTo(RequestPending))

	// No transition back to pending or onto itself
	assert.False(t, RequestPending.CanTransitionTo(RequestPending))
}
