package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"jurny-api/internal/models"
)

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	Create(ctx context.Context, roomID, senderID, body string) (models.Message, error)
	ListRecent(ctx context.Context, roomID string, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, roomID, readerID string, messageIDs []string) ([]string, error)
	MarkRoomRead(ctx context.Context, roomID, readerID string) ([]string, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, room_id, sender, body, sent_at, is_read`

// Create stores an unread message in a room.
func (r *MessageRepo) Create(ctx context.Context, roomID, senderID, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (room_id, sender, body, is_read) VALUES ($1, $2, $3, FALSE)
        RETURNING `+messageColumns, roomID, senderID, body).StructScan(&msg)
	return msg, err
}

// ListRecent returns the latest limit messages of a room in chronological order.
func (r *MessageRepo) ListRecent(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM (
            SELECT ` + messageColumns + ` FROM messages WHERE room_id=$1 ORDER BY sent_at DESC LIMIT $2
        ) recent ORDER BY sent_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, roomID, limit)
	return msgs, err
}

// MarkRead flags the given messages read for the reader and returns the ids
// that changed. Messages the reader sent are left untouched.
func (r *MessageRepo) MarkRead(ctx context.Context, roomID, readerID string, messageIDs []string) ([]string, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `UPDATE messages SET is_read=TRUE
        WHERE room_id=$1 AND sender<>$2 AND is_read=FALSE AND id = ANY($3)
        RETURNING id`, roomID, readerID, pq.Array(messageIDs))
	return ids, err
}

// MarkRoomRead flags every unread message from the other participant read.
func (r *MessageRepo) MarkRoomRead(ctx context.Context, roomID, readerID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `UPDATE messages SET is_read=TRUE
        WHERE room_id=$1 AND sender<>$2 AND is_read=FALSE
        RETURNING id`, roomID, readerID)
	return ids, err
}
