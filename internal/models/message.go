package models

import "time"

// Message is a chat message inside a room.
type Message struct {
	ID     string    `db:"id" json:"id"`
	RoomID string    `db:"room_id" json:"room_id"`
	Sender string    `db:"sender" json:"sender"`
	Body   string    `db:"body" json:"body"`
	SentAt time.Time `db:"sent_at" json:"sent_at"`
	IsRead bool      `db:"is_read" json:"is_read"`
}

// RoomEvent is broadcast to the websocket clients of a room.
type RoomEvent struct {
	Type       string   `json:"type"`
	Message    *Message `json:"message,omitempty"`
	MessageIDs []string `json:"message_ids,omitempty"`
	ReaderID   string   `json:"reader_id,omitempty"`
}

// MatchEvent is pushed to a user's notification socket when a room is
// materialized for them.
type MatchEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	PlaceID     string `json:"place_id"`
	OtherUserID string `json:"other_user_id"`
}
