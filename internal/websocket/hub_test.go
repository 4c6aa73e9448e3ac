package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string) *Client {
	return &Client{
		ID:   userID,
		Send: make(chan []byte, 4),
	}
}

func TestAttachSupersedesOldConnection(t *testing.T) {
	h := NewHub()
	first := newTestClient("u1")
	second := newTestClient("u1")

	h.attach(first)
	h.attach(second)

	// The superseded connection's send channel is closed
	_, open := <-first.Send
	assert.False(t, open)

	// The user stays online through the new connection
	assert.True(t, h.IsUserOnline("u1"))
}

func TestDetachIgnoresSupersededClient(t *testing.T) {
	h := NewHub()
	first := newTestClient("u1")
	second := newTestClient("u1")

	h.attach(first)
	h.attach(second)

	// The stale connection detaching itself must not evict the live one,
	// and must not close the already-closed channel
	require.NotPanics(t, func() {
		assert.False(t, h.detach(first))
	})
	assert.True(t, h.IsUserOnline("u1"))

	// The live connection still receives messages
	h.BroadcastToUser("u1", WSMessage{Type: EventConnect})
	assert.Len(t, second.Send, 1)

	// The live connection detaching does tear down
	assert.True(t, h.detach(second))
	assert.False(t, h.IsUserOnline("u1"))
	_, open := <-second.Send
	assert.False(t, open)
}

func TestDetachUnknownClient(t *testing.T) {
	h := NewHub()

	assert.False(t, h.detach(newTestClient("ghost")))
}
