package utils

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveChatIDOrderIndependent(t *testing.T) {
	for i := 0; i < 100; i++ {
		a := gofakeit.UUID()
		b := gofakeit.UUID()

		assert.Equal(t, DeriveChatID(a, b), DeriveChatID(b, a))
	}
}

func TestDeriveChatIDDistinctPairs(t *testing.T) {
	a, b, c := "user-a", "user-b", "user-c"

	assert.NotEqual(t, DeriveChatID(a, b), DeriveChatID(a, c))
	assert.NotEqual(t, DeriveChatID(a, b), DeriveChatID(b, c))
}

func TestChatParticipantsRoundTrip(t *testing.T) {
	a := gofakeit.UUID()
	b := gofakeit.UUID()

	first, second, ok := ChatParticipants(DeriveChatID(a, b))
	require.True(t, ok)

	assert.ElementsMatch(t, []string{a, b}, []string{first, second})
	assert.LessOrEqual(t, first, second)
}

func TestChatParticipantsRejectsMalformedKeys(t *testing.T) {
	for _, key := range []string{"", "loner", "_trailing", "leading_"} {
		_, _, ok := ChatParticipants(key)
		assert.False(t, ok, "key %q", key)
	}
}
