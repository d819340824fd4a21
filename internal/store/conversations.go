package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"obrolin/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationStore performs conversation database operations.
type ConversationStore struct {
	pool *pgxpool.Pool
}

// NewConversationStore returns a ConversationStore using the given pool.
func NewConversationStore(pool *pgxpool.Pool) *ConversationStore {
	return &ConversationStore{pool: pool}
}

// CanonicalParticipants returns a sorted copy of the participant IDs. The
// sorted sequence is the identity of a direct conversation: two calls with
// the same set in any order produce the same sequence.
func CanonicalParticipants(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return sorted
}

// ChooseNewAdmin picks a uniformly random member from remaining using the
// injected intn, or returns nil when the group has no members left.
// Randomness is injected so tests can make the choice deterministic.
func ChooseNewAdmin(remaining []string, intn func(int) int) *string {
	if len(remaining) == 0 {
		return nil
	}
	picked := remaining[intn(len(remaining))]
	return &picked
}

// CreateConversationArgs carries the fields for a new conversation.
// GroupImage must already be resolved to a durable URL by the caller.
type CreateConversationArgs struct {
	Participants []string
	IsGroup      bool
	GroupName    *string
	GroupImage   *string
	Admin        *string
}

// CreateConversation persists a conversation with the canonical participant
// sequence. Direct conversations are idempotent: if one already exists for
// the same sequence its row is returned and nothing is inserted. Group
// creation never merges, even when participant sets coincide.
func (s *ConversationStore) CreateConversation(ctx context.Context, args CreateConversationArgs) (*models.Conversation, error) {
	sorted := CanonicalParticipants(args.Participants)

	if !args.IsGroup {
		existing, err := s.byParticipants(ctx, sorted)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	// Admin must be a member of the participant sequence
	if args.Admin != nil && !contains(sorted, *args.Admin) {
		return nil, ErrNotParticipant
	}

	conv := &models.Conversation{
		ID:           uuid.New().String(),
		Participants: sorted,
		IsGroup:      args.IsGroup,
		GroupName:    args.GroupName,
		GroupImage:   args.GroupImage,
		Admin:        args.Admin,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, participants, is_group, group_name, group_image, admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING created_at, updated_at
	`, conv.ID, conv.Participants, conv.IsGroup, conv.GroupName, conv.GroupImage, conv.Admin, time.Now()).
		Scan(&conv.CreatedAt, &conv.UpdatedAt)

	if err != nil {
		// Two clients creating the same direct conversation can both pass the
		// existence check; the partial unique index decides the winner and the
		// loser returns the winner's row.
		var pgErr *pgconn.PgError
		if !args.IsGroup && errors.As(err, &pgErr) && pgErr.Code == "23505" {
			existing, readErr := s.byParticipants(ctx, sorted)
			if readErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	return conv, nil
}

// ByID returns the conversation with the given id, or ErrNotFound.
func (s *ConversationStore) ByID(ctx context.Context, conversationID string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, participants, is_group, group_name, group_image, admin, created_at, updated_at
		FROM conversations WHERE id = $1
	`, conversationID).Scan(
		&conv.ID, &conv.Participants, &conv.IsGroup, &conv.GroupName,
		&conv.GroupImage, &conv.Admin, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

// MyConversations returns every conversation containing userID, each
// enriched with the other participant's profile (direct chats only) and the
// latest message at query time.
func (s *ConversationStore) MyConversations(ctx context.Context, userID string) ([]models.ConversationView, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, participants, is_group, group_name, group_image, admin, created_at, updated_at
		FROM conversations
		WHERE $1 = ANY(participants)
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.ConversationView
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.Participants, &conv.IsGroup, &conv.GroupName,
			&conv.GroupImage, &conv.Admin, &conv.CreatedAt, &conv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		views = append(views, models.ConversationView{Conversation: conv})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range views {
		conv := &views[i]

		if !conv.IsGroup {
			for _, pid := range conv.Participants {
				if pid == userID {
					continue
				}
				var other models.User
				err := s.pool.QueryRow(ctx, `
					SELECT id, email, name, image, is_online, created_at
					FROM users WHERE id = $1
				`, pid).Scan(&other.ID, &other.Email, &other.Name, &other.Image, &other.IsOnline, &other.CreatedAt)
				if err == nil {
					resp := other.ToResponse()
					conv.OtherUser = &resp
				} else if !errors.Is(err, pgx.ErrNoRows) {
					return nil, err
				}
			}
		}

		var last models.Message
		err := s.pool.QueryRow(ctx, `
			SELECT id, conversation_id, sender_id, message_type, content, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT 1
		`, conv.ID).Scan(&last.ID, &last.ConversationID, &last.SenderID, &last.MessageType, &last.Content, &last.CreatedAt)
		if err == nil {
			conv.LastMessage = &last
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	if views == nil {
		views = []models.ConversationView{}
	}
	return views, nil
}

// KickUser removes userID from the conversation's participant sequence.
// No admin or membership check is made on the caller; any authenticated
// user may remove any participant. If the removed user was admin, admin is
// cleared so it never points outside the participant sequence.
//
// The row is locked for the read-modify-write, so concurrent membership
// changes serialize instead of losing each other's updates. Returns the
// participant sequence as it was before the removal.
func (s *ConversationStore) KickUser(ctx context.Context, conversationID, userID string) ([]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var participants []string
	var admin *string
	err = tx.QueryRow(ctx, `
		SELECT participants, admin FROM conversations WHERE id = $1 FOR UPDATE
	`, conversationID).Scan(&participants, &admin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updated := remove(participants, userID)
	if admin != nil && *admin == userID {
		admin = nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET participants = $1, admin = $2, updated_at = $3 WHERE id = $4
	`, updated, admin, time.Now(), conversationID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return participants, nil
}

// LeaveGroup removes userID from a group conversation. When the leaver was
// admin, a new admin is chosen uniformly at random (via intn) from the
// remaining participants, or cleared when none remain. Returns the possibly
// unchanged admin of the updated conversation.
//
// The row is locked for the read-modify-write, so two members leaving at
// once serialize: the second leave sees the first one's membership and admin
// already applied, and the committed admin always stays inside the
// participant sequence.
func (s *ConversationStore) LeaveGroup(ctx context.Context, conversationID, userID string, intn func(int) int) (*string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var participants []string
	var isGroup bool
	var admin *string
	err = tx.QueryRow(ctx, `
		SELECT participants, is_group, admin FROM conversations WHERE id = $1 FOR UPDATE
	`, conversationID).Scan(&participants, &isGroup, &admin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isGroup {
		return nil, ErrNotGroup
	}
	if !contains(participants, userID) {
		return nil, ErrNotParticipant
	}

	updated := remove(participants, userID)

	newAdmin := admin
	if admin != nil && *admin == userID {
		newAdmin = ChooseNewAdmin(updated, intn)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET participants = $1, admin = $2, updated_at = $3 WHERE id = $4
	`, updated, newAdmin, time.Now(), conversationID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return newAdmin, nil
}

// IsParticipant reports whether userID is in the conversation's participant
// sequence. ErrNotFound if the conversation does not exist.
func (s *ConversationStore) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var participants []string
	err := s.pool.QueryRow(ctx, `
		SELECT participants FROM conversations WHERE id = $1
	`, conversationID).Scan(&participants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return contains(participants, userID), nil
}

func (s *ConversationStore) byParticipants(ctx context.Context, sorted []string) (*models.Conversation, error) {
	conv := &models.Conversation{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, participants, is_group, group_name, group_image, admin, created_at, updated_at
		FROM conversations
		WHERE NOT is_group AND participants = $1
	`, sorted).Scan(
		&conv.ID, &conv.Participants, &conv.IsGroup, &conv.GroupName,
		&conv.GroupImage, &conv.Admin, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return conv, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
