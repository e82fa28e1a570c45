package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"jurny-api/internal/models"
)

var ErrReactionNotFound = errors.New("reaction not found")

// ReactionRepository abstracts reaction persistence.
type ReactionRepository interface {
	Upsert(ctx context.Context, placeID, userID string, reactionType models.ReactionType) (models.Reaction, error)
	FindFromUserOnPlaces(ctx context.Context, fromUID string, reactionType models.ReactionType, placeIDs []string) ([]models.Reaction, error)
	Get(ctx context.Context, placeID, userID string) (models.Reaction, error)
	Delete(ctx context.Context, placeID, userID string) error
	StatsForPlace(ctx context.Context, placeID string) (models.ReactionStats, error)
	ListForUser(ctx context.Context, userID string, reactionType models.ReactionType, limit int) ([]models.Reaction, error)
	CountByTypeForUser(ctx context.Context, userID string) (map[models.ReactionType]int, error)
}

// ReactionRepo is a sqlx implementation of ReactionRepository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs a ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

const reactionColumns = `id, place_id, from_uid, type, created_at`

// Upsert records the user's disposition, overwriting any earlier one for the place.
func (r *ReactionRepo) Upsert(ctx context.Context, placeID, userID string, reactionType models.ReactionType) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.QueryRowxContext(ctx, `INSERT INTO reactions (place_id, from_uid, type) VALUES ($1, $2, $3)
        ON CONFLICT (place_id, from_uid) DO UPDATE SET type = EXCLUDED.type
        RETURNING `+reactionColumns, placeID, userID, reactionType).StructScan(&reaction)
	return reaction, err
}

// FindFromUserOnPlaces returns fromUID's reactions of the given type on any of placeIDs.
func (r *ReactionRepo) FindFromUserOnPlaces(ctx context.Context, fromUID string, reactionType models.ReactionType, placeIDs []string) ([]models.Reaction, error) {
	if len(placeIDs) == 0 {
		return nil, nil
	}
	var reactions []models.Reaction
	err := r.db.SelectContext(ctx, &reactions, `SELECT `+reactionColumns+` FROM reactions
        WHERE from_uid=$1 AND type=$2 AND place_id = ANY($3)
        ORDER BY place_id`, fromUID, reactionType, pq.Array(placeIDs))
	return reactions, err
}

// Get returns the user's current reaction to a place.
func (r *ReactionRepo) Get(ctx context.Context, placeID, userID string) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.GetContext(ctx, &reaction, `SELECT `+reactionColumns+` FROM reactions WHERE place_id=$1 AND from_uid=$2`, placeID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reaction{}, ErrReactionNotFound
	}
	return reaction, err
}

// Delete removes the user's reaction to a place.
func (r *ReactionRepo) Delete(ctx context.Context, placeID, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reactions WHERE place_id=$1 AND from_uid=$2`, placeID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrReactionNotFound
	}
	return nil
}

// StatsForPlace counts reactions on a place per disposition.
func (r *ReactionRepo) StatsForPlace(ctx context.Context, placeID string) (models.ReactionStats, error) {
	var stats models.ReactionStats
	err := r.db.GetContext(ctx, &stats, `SELECT
            COUNT(*) FILTER (WHERE type='like') AS like_count,
            COUNT(*) FILTER (WHERE type='keep') AS keep_count,
            COUNT(*) FILTER (WHERE type='pass') AS pass_count,
            COUNT(*) AS total_count
        FROM reactions WHERE place_id=$1`, placeID)
	return stats, err
}

// ListForUser returns the user's reactions newest first, optionally filtered by type.
func (r *ReactionRepo) ListForUser(ctx context.Context, userID string, reactionType models.ReactionType, limit int) ([]models.Reaction, error) {
	var reactions []models.Reaction
	if reactionType == "" {
		err := r.db.SelectContext(ctx, &reactions, `SELECT `+reactionColumns+` FROM reactions
            WHERE from_uid=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
		return reactions, err
	}
	err := r.db.SelectContext(ctx, &reactions, `SELECT `+reactionColumns+` FROM reactions
        WHERE from_uid=$1 AND type=$2 ORDER BY created_at DESC LIMIT $3`, userID, reactionType, limit)
	return reactions, err
}

// CountByTypeForUser counts the reactions a user has given per disposition.
func (r *ReactionRepo) CountByTypeForUser(ctx context.Context, userID string) (map[models.ReactionType]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT type, COUNT(*) FROM reactions WHERE from_uid=$1 GROUP BY type`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.ReactionType]int{}
	for rows.Next() {
		var (
			reactionType models.ReactionType
			count        int
		)
		if err := rows.Scan(&reactionType, &count); err != nil {
			return nil, err
		}
		counts[reactionType] = count
	}
	return counts, rows.Err()
}
