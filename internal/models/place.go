package models

import (
	"time"

	"github.com/lib/pq"
)

// Place is a travel posting owned by exactly one user.
type Place struct {
	ID           string         `db:"id" json:"id"`
	Owner        string         `db:"owner" json:"owner"`
	Title        string         `db:"title" json:"title"`
	Images       pq.StringArray `db:"images" json:"images"`
	Genre        string         `db:"genre" json:"genre"`
	PurposeTags  pq.StringArray `db:"purpose_tags" json:"purpose_tags"`
	DemandTags   pq.StringArray `db:"demand_tags" json:"demand_tags"`
	BudgetOption *int           `db:"budget_option" json:"budget_option,omitempty"`
	PurposeText  *string        `db:"purpose_text" json:"purpose_text,omitempty"`
	BudgetMin    *int           `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax    *int           `db:"budget_max" json:"budget_max,omitempty"`
	DateStart    *Date          `db:"date_start" json:"date_start,omitempty"`
	DateEnd      *Date          `db:"date_end" json:"date_end,omitempty"`
	RecruitNum   int            `db:"recruit_num" json:"recruit_num"`
	FirstChoice  *string        `db:"first_choice" json:"first_choice,omitempty"`
	SecondChoice *string        `db:"second_choice" json:"second_choice,omitempty"`
	GmapURL      *string        `db:"gmap_url" json:"gmap_url,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// PlaceInput carries the writable fields of a place.
type PlaceInput struct {
	Title        string   `json:"title" binding:"required,max=100"`
	Images       []string `json:"images" binding:"max=5"`
	Genre        string   `json:"genre" binding:"required"`
	PurposeTags  []string `json:"purpose_tags"`
	DemandTags   []string `json:"demand_tags"`
	BudgetOption *int     `json:"budget_option" binding:"omitempty,min=1,max=3"`
	PurposeText  *string  `json:"purpose_text" binding:"omitempty,max=500"`
	BudgetMin    *int     `json:"budget_min" binding:"omitempty,min=0,max=1000000"`
	BudgetMax    *int     `json:"budget_max" binding:"omitempty,min=0,max=1000000"`
	DateStart    *Date    `json:"date_start"`
	DateEnd      *Date    `json:"date_end"`
	RecruitNum   int      `json:"recruit_num" binding:"required,min=1,max=100"`
	FirstChoice  *string  `json:"first_choice" binding:"omitempty,max=200"`
	SecondChoice *string  `json:"second_choice" binding:"omitempty,max=200"`
	GmapURL      *string  `json:"gmap_url" binding:"omitempty,url"`
}

// PlaceFilter narrows the discovery feed.
type PlaceFilter struct {
	Query       string
	Genre       string
	PurposeTags []string
	DemandTags  []string
	BudgetMin   *int
	BudgetMax   *int
	DateStart   *time.Time
	DateEnd     *time.Time
	Limit       int
}
