package store

import (
	"context"
	"errors"
	"time"

	"obrolin/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CallStore performs call session database operations.
type CallStore struct {
	pool *pgxpool.Pool
}

// NewCallStore returns a CallStore using the given pool.
func NewCallStore(pool *pgxpool.Pool) *CallStore {
	return &CallStore{pool: pool}
}

// StartCall deactivates the conversation's current active call, if any, and
// inserts a new active session. The superseded session is kept as history.
// Both writes run in one transaction so a concurrent double start commits a
// single active row; the loser fails on the partial unique index instead of
// leaving two active sessions behind.
//
// Not idempotent: starting twice creates two rows and deactivates the first.
// Callers should check ActiveCall first and join the existing room.
func (s *CallStore) StartCall(ctx context.Context, conversationID, roomID, createdBy string) (*models.Call, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE calls SET is_active = false WHERE conversation_id = $1 AND is_active
	`, conversationID)
	if err != nil {
		return nil, err
	}

	call := &models.Call{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		RoomID:         roomID,
		CreatedBy:      createdBy,
		IsActive:       true,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO calls (id, conversation_id, room_id, created_by, is_active, created_at)
		VALUES ($1, $2, $3, $4, true, $5)
		RETURNING created_at
	`, call.ID, call.ConversationID, call.RoomID, call.CreatedBy, time.Now()).Scan(&call.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return call, nil
}

// ActiveCall returns the conversation's session with is_active = true, or
// nil when no call is active. Pure read, no side effects.
func (s *CallStore) ActiveCall(ctx context.Context, conversationID string) (*models.Call, error) {
	call := &models.Call{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, conversation_id, room_id, created_by, is_active, created_at
		FROM calls
		WHERE conversation_id = $1 AND is_active
	`, conversationID).Scan(
		&call.ID, &call.ConversationID, &call.RoomID, &call.CreatedBy, &call.IsActive, &call.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return call, nil
}

// History returns the conversation's call sessions, newest first.
func (s *CallStore) History(ctx context.Context, conversationID string, limit int) ([]models.Call, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, room_id, created_by, is_active, created_at
		FROM calls
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []models.Call
	for rows.Next() {
		var c models.Call
		if err := rows.Scan(&c.ID, &c.ConversationID, &c.RoomID, &c.CreatedBy, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if calls == nil {
		calls = []models.Call{}
	}
	return calls, rows.Err()
}
