package handlers

import (
	"context"
	"os"
	"testing"
	"time"

	"talksy/server/internal/database"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDatabase(t *testing.T) {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}
	require.NoError(t, database.Connect())
	t.Cleanup(database.Close)
}

func createTestUser(t *testing.T) string {
	t.Helper()
	var id string
	err := database.Pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, gofakeit.Username()+gofakeit.DigitN(6), gofakeit.Email(), gofakeit.Name(), "unused").Scan(&id)
	require.NoError(t, err)
	return id
}

func TestEnsureChatIdempotent(t *testing.T) {
	requireDatabase(t)

	ctx := context.Background()
	a := createTestUser(t)
	b := createTestUser(t)

	tx, err := database.Pool.Begin(ctx)
	require.NoError(t, err)
	first, err := ensureChat(ctx, tx, a, b)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	var createdAt time.Time
	require.NoError(t, database.Pool.QueryRow(ctx,
		"SELECT created_at FROM chats WHERE id = $1", first).Scan(&createdAt))

	// The other participant resolves to the same record, untouched
	tx, err = database.Pool.Begin(ctx)
	require.NoError(t, err)
	second, err := ensureChat(ctx, tx, b, a)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, first, second)

	var count int
	var after time.Time
	require.NoError(t, database.Pool.QueryRow(ctx,
		"SELECT COUNT(*), MIN(created_at) FROM chats WHERE id = $1", first).Scan(&count, &after))
	assert.Equal(t, 1, count)
	assert.True(t, after.Equal(createdAt), "first write wins, creation time never clobbered")
}
