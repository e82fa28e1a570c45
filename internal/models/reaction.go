package models

import "time"

// ReactionType is a user's disposition toward a place.
type ReactionType string

const (
	ReactionLike ReactionType = "like"
	ReactionKeep ReactionType = "keep"
	ReactionPass ReactionType = "pass"
)

// Valid reports whether t is a known disposition.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionKeep, ReactionPass:
		return true
	}
	return false
}

// Reaction is the single current disposition of a user toward a place.
type Reaction struct {
	ID        string       `db:"id" json:"id"`
	PlaceID   string       `db:"place_id" json:"place_id"`
	FromUID   string       `db:"from_uid" json:"from_uid"`
	Type      ReactionType `db:"type" json:"type"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// ReactionStats counts reactions on a place.
type ReactionStats struct {
	LikeCount  int `db:"like_count" json:"like_count"`
	KeepCount  int `db:"keep_count" json:"keep_count"`
	PassCount  int `db:"pass_count" json:"pass_count"`
	TotalCount int `db:"total_count" json:"total_count"`
}
