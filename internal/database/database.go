package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

func Connect(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is not configured")
	}

	var err error
	Pool, err = pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	err = Pool.Ping(context.Background())
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connected successfully using PGX")
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}

// Migrate creates the schema if it does not exist yet. The partial unique
// indexes back two invariants: at most one direct conversation per canonical
// participant sequence, and at most one active call per conversation.
func Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			token_identifier TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			is_online BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY,
			participants TEXT[] NOT NULL,
			is_group BOOLEAN NOT NULL,
			group_name TEXT,
			group_image TEXT,
			admin TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS conversations_direct_participants_key
			ON conversations (participants) WHERE NOT is_group`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id UUID NOT NULL REFERENCES users(id),
			message_type TEXT NOT NULL CHECK (message_type IN ('text','image','video','audio','document')),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS messages_conversation_created_at_idx
			ON messages (conversation_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS calls (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			room_id TEXT NOT NULL,
			created_by TEXT NOT NULL,
			is_active BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS calls_one_active_per_conversation_key
			ON calls (conversation_id) WHERE is_active`,
	}

	for _, stmt := range statements {
		if _, err := Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✅ Database schema is up to date")
	return nil
}
