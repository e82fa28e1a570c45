package matching

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"jurny-api/internal/models"
	"jurny-api/internal/observability"
	"jurny-api/internal/repositories"
)

var ErrInvalidReaction = errors.New("invalid reaction type")

// PlaceReader loads a single place.
type PlaceReader interface {
	Get(ctx context.Context, placeID string) (models.Place, error)
}

// ReactionStore persists reactions.
type ReactionStore interface {
	Upsert(ctx context.Context, placeID, userID string, reactionType models.ReactionType) (models.Reaction, error)
	Get(ctx context.Context, placeID, userID string) (models.Reaction, error)
}

// MatchEvaluator runs the mutual-like check.
type MatchEvaluator interface {
	Evaluate(ctx context.Context, place models.Place, reactorID string) Match
}

// Outcome is what a reaction produced.
type Outcome struct {
	Reaction models.Reaction `json:"reaction"`
	Match
}

// ReactionService records reactions and triggers matching on likes.
type ReactionService struct {
	places    PlaceReader
	reactions ReactionStore
	evaluator MatchEvaluator
	log       *zap.Logger
}

// NewReactionService wires a ReactionService.
func NewReactionService(places PlaceReader, reactions ReactionStore, evaluator MatchEvaluator, log *zap.Logger) *ReactionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReactionService{places: places, reactions: reactions, evaluator: evaluator, log: log}
}

// React upserts the user's disposition toward a place. A like on somebody
// else's place is followed by a best-effort mutual-like evaluation; only the
// reaction write itself can fail the call.
func (s *ReactionService) React(ctx context.Context, placeID, userID string, reactionType models.ReactionType) (Outcome, error) {
	if !reactionType.Valid() {
		return Outcome{}, ErrInvalidReaction
	}

	place, err := s.places.Get(ctx, placeID)
	if err != nil {
		return Outcome{}, err
	}

	reaction, err := s.reactions.Upsert(ctx, placeID, userID, reactionType)
	if err != nil {
		return Outcome{}, fmt.Errorf("record reaction: %w", err)
	}
	observability.IncReaction(string(reactionType))
	_ = observability.PublishEvent(ctx, observability.RoutingKeyReactions, observability.DomainEvent(observability.EventReactionRecorded, map[string]interface{}{
		"place_id": placeID,
		"from_uid": userID,
		"type":     reactionType,
	}), observability.HeadersFromContext(ctx))

	outcome := Outcome{Reaction: reaction}
	if reactionType == models.ReactionLike && place.Owner != userID {
		outcome.Match = s.evaluator.Evaluate(ctx, place, userID)
	}
	return outcome, nil
}

// Recheck re-derives the match for a place the user currently likes.
func (s *ReactionService) Recheck(ctx context.Context, placeID, userID string) (Match, error) {
	place, err := s.places.Get(ctx, placeID)
	if err != nil {
		return Match{}, err
	}

	reaction, err := s.reactions.Get(ctx, placeID, userID)
	if errors.Is(err, repositories.ErrReactionNotFound) {
		return Match{}, nil
	}
	if err != nil {
		return Match{}, fmt.Errorf("load reaction: %w", err)
	}
	if reaction.Type != models.ReactionLike || place.Owner == userID {
		return Match{}, nil
	}
	return s.evaluator.Evaluate(ctx, place, userID), nil
}
