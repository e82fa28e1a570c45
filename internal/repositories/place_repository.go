package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"jurny-api/internal/models"
)

var ErrPlaceNotFound = errors.New("place not found")

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 100
)

// PlaceRepository abstracts place persistence.
type PlaceRepository interface {
	Get(ctx context.Context, placeID string) (models.Place, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Place, error)
	Feed(ctx context.Context, viewerID string, filter models.PlaceFilter) ([]models.Place, error)
	Create(ctx context.Context, ownerID string, input models.PlaceInput) (models.Place, error)
	Update(ctx context.Context, placeID, ownerID string, input models.PlaceInput) (models.Place, error)
	Delete(ctx context.Context, placeID, ownerID string) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// PlaceRepo is a sqlx implementation of PlaceRepository.
type PlaceRepo struct {
	db *sqlx.DB
}

// NewPlaceRepo constructs a PlaceRepo.
func NewPlaceRepo(db *sqlx.DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

const placeColumns = `id, owner, title, images, genre, purpose_tags, demand_tags, budget_option, purpose_text,
        budget_min, budget_max, date_start, date_end, recruit_num, first_choice, second_choice, gmap_url, created_at`

// Get fetches a place by id.
func (r *PlaceRepo) Get(ctx context.Context, placeID string) (models.Place, error) {
	var place models.Place
	err := r.db.GetContext(ctx, &place, `SELECT `+placeColumns+` FROM places WHERE id=$1`, placeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Place{}, ErrPlaceNotFound
	}
	return place, err
}

// ListIDsByOwner returns the ids of every place the user has posted.
func (r *PlaceRepo) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM places WHERE owner=$1 ORDER BY id`, ownerID)
	return ids, err
}

// ListByOwner returns the user's places, newest first.
func (r *PlaceRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.Place, error) {
	var places []models.Place
	err := r.db.SelectContext(ctx, &places, `SELECT `+placeColumns+` FROM places
        WHERE owner=$1 ORDER BY created_at DESC LIMIT $2`, ownerID, clampLimit(limit))
	return places, err
}

// Feed returns other users' places matching the filter, newest first.
func (r *PlaceRepo) Feed(ctx context.Context, viewerID string, filter models.PlaceFilter) ([]models.Place, error) {
	query, args := buildFeedQuery(viewerID, filter)
	var places []models.Place
	err := r.db.SelectContext(ctx, &places, query, args...)
	return places, err
}

func buildFeedQuery(viewerID string, filter models.PlaceFilter) (string, []any) {
	conds := []string{"owner <> $1"}
	args := []any{viewerID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		add(`(title ILIKE $%[1]d ESCAPE '\' OR purpose_text ILIKE $%[1]d ESCAPE '\')`, "%"+likeEscaper.Replace(q)+"%")
	}
	if filter.Genre != "" {
		add("genre = $%d", filter.Genre)
	}
	if len(filter.PurposeTags) > 0 {
		add("purpose_tags && $%d", pq.Array(filter.PurposeTags))
	}
	if len(filter.DemandTags) > 0 {
		add("demand_tags && $%d", pq.Array(filter.DemandTags))
	}
	if filter.BudgetMin != nil {
		add("budget_min >= $%d", *filter.BudgetMin)
	}
	if filter.BudgetMax != nil {
		add("budget_max <= $%d", *filter.BudgetMax)
	}
	if filter.DateStart != nil {
		add("date_start >= $%d", *filter.DateStart)
	}
	if filter.DateEnd != nil {
		add("date_end <= $%d", *filter.DateEnd)
	}

	args = append(args, clampLimit(filter.Limit))
	query := fmt.Sprintf(`SELECT %s FROM places WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		placeColumns, strings.Join(conds, " AND "), len(args))
	return query, args
}

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}

// Create stores a new place owned by ownerID.
func (r *PlaceRepo) Create(ctx context.Context, ownerID string, input models.PlaceInput) (models.Place, error) {
	var place models.Place
	err := r.db.QueryRowxContext(ctx, `INSERT INTO places (owner, title, images, genre, purpose_tags, demand_tags,
            budget_option, purpose_text, budget_min, budget_max, date_start, date_end, recruit_num,
            first_choice, second_choice, gmap_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING `+placeColumns,
		ownerID, input.Title, pq.StringArray(input.Images), input.Genre, pq.StringArray(input.PurposeTags), pq.StringArray(input.DemandTags),
		input.BudgetOption, input.PurposeText, input.BudgetMin, input.BudgetMax, input.DateStart, input.DateEnd, input.RecruitNum,
		input.FirstChoice, input.SecondChoice, input.GmapURL).StructScan(&place)
	return place, err
}

// Update overwrites a place's fields when ownerID owns it.
func (r *PlaceRepo) Update(ctx context.Context, placeID, ownerID string, input models.PlaceInput) (models.Place, error) {
	var place models.Place
	err := r.db.QueryRowxContext(ctx, `UPDATE places SET title=$3, images=$4, genre=$5, purpose_tags=$6, demand_tags=$7,
            budget_option=$8, purpose_text=$9, budget_min=$10, budget_max=$11, date_start=$12, date_end=$13,
            recruit_num=$14, first_choice=$15, second_choice=$16, gmap_url=$17
        WHERE id=$1 AND owner=$2
        RETURNING `+placeColumns,
		placeID, ownerID, input.Title, pq.StringArray(input.Images), input.Genre, pq.StringArray(input.PurposeTags), pq.StringArray(input.DemandTags),
		input.BudgetOption, input.PurposeText, input.BudgetMin, input.BudgetMax, input.DateStart, input.DateEnd,
		input.RecruitNum, input.FirstChoice, input.SecondChoice, input.GmapURL).StructScan(&place)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Place{}, ErrPlaceNotFound
	}
	return place, err
}

// Delete removes a place when ownerID owns it.
func (r *PlaceRepo) Delete(ctx context.Context, placeID, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE id=$1 AND owner=$2`, placeID, ownerID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

// CountByOwner counts the user's postings.
func (r *PlaceRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM places WHERE owner=$1`, ownerID)
	return count, err
}
