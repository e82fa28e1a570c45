package matching

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"jurny-api/internal/models"
	"jurny-api/internal/observability"
	"jurny-api/internal/repositories"
)

var ErrInvalidPairing = errors.New("invalid pairing: user cannot chat with themselves")

// RoomStore is the chat room storage the materializer needs. Insert must
// report repositories.ErrChatRoomExists when the unique key is already taken.
type RoomStore interface {
	Find(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error)
	Insert(ctx context.Context, placeID, userA, userB string) (models.ChatRoom, error)
}

// RoomAnnouncer is told about rooms this process actually inserted.
type RoomAnnouncer interface {
	RoomCreated(ctx context.Context, room models.ChatRoom)
}

// Materializer creates at most one chat room per place and unordered user pair.
type Materializer struct {
	rooms     RoomStore
	announcer RoomAnnouncer
	log       *zap.Logger
}

// NewMaterializer builds a Materializer. announcer may be nil.
func NewMaterializer(rooms RoomStore, announcer RoomAnnouncer, log *zap.Logger) *Materializer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Materializer{rooms: rooms, announcer: announcer, log: log}
}

// CanonicalPair orders two user ids so that the first is the smaller.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Materialize returns the room for (placeID, {a, b}), creating it if absent.
// A lost insert race is resolved by re-reading the winning row.
func (m *Materializer) Materialize(ctx context.Context, placeID, a, b string) (models.ChatRoom, error) {
	if a == b {
		return models.ChatRoom{}, ErrInvalidPairing
	}
	userA, userB := CanonicalPair(a, b)

	ctx, span := otel.Tracer("jurny-api/matching").Start(ctx, "chat_room.materialize",
		trace.WithAttributes(attribute.String("place_id", placeID)))
	defer span.End()

	room, err := m.rooms.Find(ctx, placeID, userA, userB)
	if err == nil {
		observability.IncRoomMaterialized("existing")
		return room, nil
	}
	if !errors.Is(err, repositories.ErrChatRoomNotFound) {
		span.RecordError(err)
		return models.ChatRoom{}, fmt.Errorf("find chat room: %w", err)
	}

	room, err = m.rooms.Insert(ctx, placeID, userA, userB)
	if errors.Is(err, repositories.ErrChatRoomExists) {
		m.log.Info("chat room insert conflict, re-reading",
			zap.String("place_id", placeID), zap.String("user_a", userA), zap.String("user_b", userB))
		room, err = m.rooms.Find(ctx, placeID, userA, userB)
		if err != nil {
			span.RecordError(err)
			return models.ChatRoom{}, fmt.Errorf("re-read chat room after conflict: %w", err)
		}
		observability.IncRoomMaterialized("recovered")
		return room, nil
	}
	if err != nil {
		span.RecordError(err)
		return models.ChatRoom{}, fmt.Errorf("insert chat room: %w", err)
	}

	observability.IncRoomMaterialized("created")
	m.log.Info("chat room created", zap.String("room_id", room.ID), zap.String("place_id", placeID))
	if m.announcer != nil {
		m.announcer.RoomCreated(ctx, room)
	}
	return room, nil
}
