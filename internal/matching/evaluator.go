package matching

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"jurny-api/internal/models"
	"jurny-api/internal/observability"
)

// OwnedPlaces lists the places a user has posted.
type OwnedPlaces interface {
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// ReactionFinder reads reactions of one user over a set of places.
type ReactionFinder interface {
	FindFromUserOnPlaces(ctx context.Context, fromUID string, reactionType models.ReactionType, placeIDs []string) ([]models.Reaction, error)
}

// RoomMaterializer creates or returns the room of a pair on a place.
type RoomMaterializer interface {
	Materialize(ctx context.Context, placeID, a, b string) (models.ChatRoom, error)
}

// Match is the outcome of a mutual-like evaluation.
type Match struct {
	Matched bool             `json:"matched"`
	Room    *models.ChatRoom `json:"room,omitempty"`
}

// Evaluator decides whether a like completes a mutual like and, if so,
// hands the pair to the materializer.
type Evaluator struct {
	places       OwnedPlaces
	reactions    ReactionFinder
	materializer RoomMaterializer
	log          *zap.Logger
}

// NewEvaluator builds an Evaluator.
func NewEvaluator(places OwnedPlaces, reactions ReactionFinder, materializer RoomMaterializer, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{places: places, reactions: reactions, materializer: materializer, log: log}
}

// Evaluate checks whether the owner of place has liked any place owned by
// reactorID. The reactor's own like on place must already be stored.
// Storage failures are logged and reported as no match.
func (e *Evaluator) Evaluate(ctx context.Context, place models.Place, reactorID string) Match {
	if place.Owner == reactorID {
		return Match{}
	}

	ctx, span := otel.Tracer("jurny-api/matching").Start(ctx, "match.evaluate",
		trace.WithAttributes(attribute.String("place_id", place.ID)))
	defer span.End()

	owned, err := e.places.ListIDsByOwner(ctx, reactorID)
	if err != nil {
		e.log.Warn("match check: list reactor places failed",
			zap.String("place_id", place.ID), zap.String("reactor_id", reactorID), zap.Error(err))
		observability.IncMatchEvaluation("error")
		return Match{}
	}
	if len(owned) == 0 {
		observability.IncMatchEvaluation("no_places")
		return Match{}
	}

	likes, err := e.reactions.FindFromUserOnPlaces(ctx, place.Owner, models.ReactionLike, owned)
	if err != nil {
		e.log.Warn("match check: find owner likes failed",
			zap.String("place_id", place.ID), zap.String("owner_id", place.Owner), zap.Error(err))
		observability.IncMatchEvaluation("error")
		return Match{}
	}
	if len(likes) == 0 {
		observability.IncMatchEvaluation("no_match")
		return Match{}
	}

	observability.IncMatchEvaluation("match")
	target := attributionPlace(place.ID, likes)
	room, err := e.materializer.Materialize(ctx, target, reactorID, place.Owner)
	if err != nil {
		e.log.Error("match found but chat room could not be materialized",
			zap.String("place_id", target), zap.String("reactor_id", reactorID), zap.String("owner_id", place.Owner), zap.Error(err))
		return Match{Matched: true}
	}
	return Match{Matched: true, Room: &room}
}

// attributionPlace picks the smallest id among the liked place and the
// places liked back, so both sides of a crossing like resolve to one key.
func attributionPlace(likedPlaceID string, likedBack []models.Reaction) string {
	target := likedPlaceID
	for _, r := range likedBack {
		if r.PlaceID < target {
			target = r.PlaceID
		}
	}
	return target
}
