package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"jurny-api/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Upsert(ctx context.Context, userID string, input models.ProfileInput) (models.Profile, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, name, gender, age, partner_gender, must_condition, mbti, budget_pref,
        purpose_tags, demand_tags, phone, email, avatar_url, created_at`

// Get fetches a profile by user id.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// Upsert creates or replaces the user's profile.
func (r *ProfileRepo) Upsert(ctx context.Context, userID string, input models.ProfileInput) (models.Profile, error) {
	var profile models.Profile
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (id, name, gender, age, partner_gender, must_condition, mbti,
            budget_pref, purpose_tags, demand_tags, phone, email, avatar_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, gender=EXCLUDED.gender, age=EXCLUDED.age,
            partner_gender=EXCLUDED.partner_gender, must_condition=EXCLUDED.must_condition, mbti=EXCLUDED.mbti,
            budget_pref=EXCLUDED.budget_pref, purpose_tags=EXCLUDED.purpose_tags, demand_tags=EXCLUDED.demand_tags,
            phone=EXCLUDED.phone, email=EXCLUDED.email, avatar_url=EXCLUDED.avatar_url
        RETURNING `+profileColumns,
		userID, input.Name, input.Gender, input.Age, input.PartnerGender, input.MustCondition, input.MBTI,
		pq.Int64Array(input.BudgetPref), pq.StringArray(input.PurposeTags), pq.StringArray(input.DemandTags),
		input.Phone, input.Email, input.AvatarURL).StructScan(&profile)
	return profile, err
}

// Exists reports whether the user has created a profile.
func (r *ProfileRepo) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE id=$1)`, userID)
	return exists, err
}
