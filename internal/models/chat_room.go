package models

import "time"

// ChatRoom hosts the conversation of a matched pair around a place.
// UserA is always the smaller of the two user ids.
type ChatRoom struct {
	ID        string    `db:"id" json:"id"`
	PlaceID   string    `db:"place_id" json:"place_id"`
	UserA     string    `db:"user_a" json:"user_a"`
	UserB     string    `db:"user_b" json:"user_b"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether userID is one of the room's two users.
func (r ChatRoom) HasParticipant(userID string) bool {
	return r.UserA == userID || r.UserB == userID
}

// OtherUser returns the participant that is not userID.
func (r ChatRoom) OtherUser(userID string) string {
	if r.UserA == userID {
		return r.UserB
	}
	return r.UserA
}

// ChatRoomSummary is a room as listed for one of its participants.
type ChatRoomSummary struct {
	ID              string     `db:"id" json:"id"`
	PlaceID         string     `db:"place_id" json:"place_id"`
	PlaceTitle      *string    `db:"place_title" json:"place_title,omitempty"`
	UserA           string     `db:"user_a" json:"-"`
	UserB           string     `db:"user_b" json:"-"`
	OtherUserID     string     `db:"other_user_id" json:"-"`
	OtherUserName   *string    `db:"other_user_name" json:"-"`
	OtherUserAvatar *string    `db:"other_user_avatar" json:"-"`
	LatestBody      *string    `db:"latest_body" json:"-"`
	LatestSentAt    *time.Time `db:"latest_sent_at" json:"-"`
	UnreadCount     int        `db:"unread_count" json:"unread_count"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
