package store

import (
	"context"
	"errors"
	"time"

	"obrolin/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserStore mirrors identity-provider records. Rows are created and updated
// by webhook sync events; the rest of the system only reads them.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore returns a UserStore using the given pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// UpsertByToken creates or refreshes the user record for an identity token.
// Used for both user.created and user.updated sync events.
func (u *UserStore) UpsertByToken(ctx context.Context, tokenIdentifier, email, name, image string) (*models.User, error) {
	user := &models.User{TokenIdentifier: tokenIdentifier}
	err := u.pool.QueryRow(ctx, `
		INSERT INTO users (id, token_identifier, email, name, image, is_online, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $6)
		ON CONFLICT (token_identifier) DO UPDATE
			SET email = EXCLUDED.email, name = EXCLUDED.name, image = EXCLUDED.image, updated_at = EXCLUDED.updated_at
		RETURNING id, email, name, image, is_online, created_at, updated_at
	`, uuid.New().String(), tokenIdentifier, email, name, image, time.Now()).Scan(
		&user.ID, &user.Email, &user.Name, &user.Image, &user.IsOnline, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetOnline flips the online flag for an identity token. Driven by
// session.created / session.ended sync events.
func (u *UserStore) SetOnline(ctx context.Context, tokenIdentifier string, online bool) error {
	tag, err := u.pool.Exec(ctx, `
		UPDATE users SET is_online = $1, updated_at = $2 WHERE token_identifier = $3
	`, online, time.Now(), tokenIdentifier)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ByToken finds a user by identity token, or ErrNotFound.
func (u *UserStore) ByToken(ctx context.Context, tokenIdentifier string) (*models.User, error) {
	return u.one(ctx, `token_identifier = $1`, tokenIdentifier)
}

// ByID finds a user by internal id, or ErrNotFound.
func (u *UserStore) ByID(ctx context.Context, id string) (*models.User, error) {
	return u.one(ctx, `id = $1`, id)
}

// List returns every user except excludeID, for the new-chat picker.
func (u *UserStore) List(ctx context.Context, excludeID string) ([]models.UserResponse, error) {
	rows, err := u.pool.Query(ctx, `
		SELECT id, token_identifier, email, name, image, is_online, created_at, updated_at
		FROM users
		WHERE id != $1
		ORDER BY name ASC
	`, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserResponse
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.TokenIdentifier, &user.Email, &user.Name,
			&user.Image, &user.IsOnline, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user.ToResponse())
	}
	if users == nil {
		users = []models.UserResponse{}
	}
	return users, rows.Err()
}

func (u *UserStore) one(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	err := u.pool.QueryRow(ctx, `
		SELECT id, token_identifier, email, name, image, is_online, created_at, updated_at
		FROM users WHERE `+where, arg).Scan(
		&user.ID, &user.TokenIdentifier, &user.Email, &user.Name,
		&user.Image, &user.IsOnline, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
