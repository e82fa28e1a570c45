package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"jurny-api/internal/models"
)

var (
	ErrChatRoomNotFound = errors.New("chat room not found")
	ErrChatRoomExists   = errors.New("chat room already exists")
)

// ChatRoomRepository abstracts chat room persistence. userA and userB are
// expected in canonical order (userA < userB).
type ChatRoomRepository interface {
	Find(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error)
	Insert(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error)
	Get(ctx context.Context, roomID string) (models.ChatRoom, error)
	ListForUser(ctx context.Context, userID string) ([]models.ChatRoomSummary, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, roomID string) error
}

// ChatRoomRepo is a sqlx implementation of ChatRoomRepository.
type ChatRoomRepo struct {
	db *sqlx.DB
}

// NewChatRoomRepo constructs a ChatRoomRepo.
func NewChatRoomRepo(db *sqlx.DB) *ChatRoomRepo {
	return &ChatRoomRepo{db: db}
}

const chatRoomColumns = `id, place_id, user_a, user_b, created_at`

// Find looks up the room of a canonical pair on a place.
func (r *ChatRoomRepo) Find(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT `+chatRoomColumns+` FROM chat_rooms
        WHERE place_id=$1 AND user_a=$2 AND user_b=$3`, placeID, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrChatRoomNotFound
	}
	return room, err
}

// Insert creates a room. It returns ErrChatRoomExists when a concurrent
// insert for the same place and pair already won.
func (r *ChatRoomRepo) Insert(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.QueryRowxContext(ctx, `INSERT INTO chat_rooms (place_id, user_a, user_b) VALUES ($1, $2, $3)
        RETURNING `+chatRoomColumns, placeID, userA, userB).StructScan(&room)
	if isUniqueViolation(err) {
		return models.ChatRoom{}, ErrChatRoomExists
	}
	return room, err
}

// Get fetches a room by id.
func (r *ChatRoomRepo) Get(ctx context.Context, roomID string) (models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.GetContext(ctx, &room, `SELECT `+chatRoomColumns+` FROM chat_rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatRoom{}, ErrChatRoomNotFound
	}
	return room, err
}

// ListForUser returns the user's rooms with the other participant, the
// latest message and the unread count, most recent activity first.
func (r *ChatRoomRepo) ListForUser(ctx context.Context, userID string) ([]models.ChatRoomSummary, error) {
	query := `SELECT cr.id, cr.place_id, cr.user_a, cr.user_b, cr.created_at,
            pl.title AS place_title,
            CASE WHEN cr.user_a=$1 THEN cr.user_b ELSE cr.user_a END AS other_user_id,
            pr.name AS other_user_name,
            pr.avatar_url AS other_user_avatar,
            lm.body AS latest_body,
            lm.sent_at AS latest_sent_at,
            (SELECT COUNT(*) FROM messages m
                WHERE m.room_id=cr.id AND m.sender<>$1 AND m.is_read=FALSE) AS unread_count
        FROM chat_rooms cr
        LEFT JOIN places pl ON pl.id = cr.place_id
        LEFT JOIN profiles pr ON pr.id = (CASE WHEN cr.user_a=$1 THEN cr.user_b ELSE cr.user_a END)
        LEFT JOIN LATERAL (
            SELECT body, sent_at FROM messages WHERE room_id=cr.id ORDER BY sent_at DESC LIMIT 1
        ) lm ON TRUE
        WHERE cr.user_a=$1 OR cr.user_b=$1
        ORDER BY COALESCE(lm.sent_at, cr.created_at) DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ChatRoomSummary
	for rows.Next() {
		var summary models.ChatRoomSummary
		if err := rows.StructScan(&summary); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

// UnreadCount counts messages addressed to the user that are still unread.
func (r *ChatRoomRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages m
        JOIN chat_rooms cr ON cr.id = m.room_id
        WHERE (cr.user_a=$1 OR cr.user_b=$1) AND m.sender<>$1 AND m.is_read=FALSE`, userID)
	return count, err
}

// Delete removes a room together with its messages.
func (r *ChatRoomRepo) Delete(ctx context.Context, roomID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_rooms WHERE id=$1`, roomID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatRoomNotFound
	}
	return nil
}
