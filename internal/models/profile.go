package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile holds a user's public matching profile.
type Profile struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Gender        *string        `db:"gender" json:"gender,omitempty"`
	Age           *int           `db:"age" json:"age,omitempty"`
	PartnerGender *string        `db:"partner_gender" json:"partner_gender,omitempty"`
	MustCondition *string        `db:"must_condition" json:"must_condition,omitempty"`
	MBTI          *string        `db:"mbti" json:"mbti,omitempty"`
	BudgetPref    pq.Int64Array  `db:"budget_pref" json:"budget_pref"`
	PurposeTags   pq.StringArray `db:"purpose_tags" json:"purpose_tags"`
	DemandTags    pq.StringArray `db:"demand_tags" json:"demand_tags"`
	Phone         *string        `db:"phone" json:"phone,omitempty"`
	Email         *string        `db:"email" json:"email,omitempty"`
	AvatarURL     *string        `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// ProfileInput carries the writable fields of a profile.
type ProfileInput struct {
	Name          string   `json:"name" binding:"required,max=50"`
	Gender        *string  `json:"gender"`
	Age           *int     `json:"age" binding:"omitempty,min=18,max=100"`
	PartnerGender *string  `json:"partner_gender"`
	MustCondition *string  `json:"must_condition" binding:"omitempty,max=200"`
	MBTI          *string  `json:"mbti" binding:"omitempty,len=4"`
	BudgetPref    []int64  `json:"budget_pref"`
	PurposeTags   []string `json:"purpose_tags"`
	DemandTags    []string `json:"demand_tags"`
	Phone         *string  `json:"phone"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	AvatarURL     *string  `json:"avatar_url" binding:"omitempty,url"`
}

// ProfileStats summarises a user's activity.
type ProfileStats struct {
	PostedCount int `json:"posted_count"`
	LikedCount  int `json:"liked_count"`
	KeptCount   int `json:"kept_count"`
	PassedCount int `json:"passed_count"`
}

// ProfileSummary is the slice of a profile shown next to a chat room.
type ProfileSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
