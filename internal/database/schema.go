package database

import "context"

// Schema statements run in order at startup. Each is idempotent so a restart
// against an existing database is a no-op.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		about TEXT NOT NULL DEFAULT '',
		phone VARCHAR(30) NOT NULL DEFAULT '',
		avatar VARCHAR(255),
		is_online BOOLEAN NOT NULL DEFAULT FALSE,
		last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Chat id is the canonical sorted pair key, so the two participant columns
	// always hold user_a < user_b.
	`CREATE TABLE IF NOT EXISTS chats (
		id VARCHAR(100) PRIMARY KEY,
		user_a UUID NOT NULL REFERENCES users(id),
		user_b UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS groups (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(100) NOT NULL,
		admin_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS group_members (
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id),
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (group_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		chat_id VARCHAR(100) REFERENCES chats(id) ON DELETE CASCADE,
		group_id UUID REFERENCES groups(id) ON DELETE CASCADE,
		sender_id UUID NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK ((chat_id IS NULL) != (group_id IS NULL))
	)`,

	`CREATE TABLE IF NOT EXISTS friend_requests (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		from_id UUID NOT NULL REFERENCES users(id),
		to_id UUID NOT NULL REFERENCES users(id),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (from_id != to_id)
	)`,

	`CREATE TABLE IF NOT EXISTS friendships (
		user_id UUID NOT NULL REFERENCES users(id),
		friend_id UUID NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, friend_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages (chat_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_group_created ON messages (group_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_friend_requests_to_status ON friend_requests (to_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_friend_requests_from_status ON friend_requests (from_id, status)`,
}

// Migrate applies the schema against the connected pool.
func Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
