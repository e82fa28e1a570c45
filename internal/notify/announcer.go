// Package notify tells both participants, the event bus and the audit log
// about newly materialized chat rooms.
package notify

import (
	"context"

	"go.uber.org/zap"

	"jurny-api/internal/models"
	"jurny-api/internal/observability"
	"jurny-api/internal/telemetry"
)

// UserNotifier pushes an event to a user's live notification sockets.
type UserNotifier interface {
	NotifyUser(userID string, event models.MatchEvent)
}

type Announcer struct {
	notifier UserNotifier
	audit    *telemetry.AuditEmitter
	log      *zap.Logger
}

func NewAnnouncer(notifier UserNotifier, audit *telemetry.AuditEmitter, log *zap.Logger) *Announcer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Announcer{notifier: notifier, audit: audit, log: log}
}

// RoomCreated fans a match event out to both users. Delivery is best effort.
func (a *Announcer) RoomCreated(ctx context.Context, room models.ChatRoom) {
	if a.notifier != nil {
		a.notifier.NotifyUser(room.UserA, matchEvent(room, room.UserA))
		a.notifier.NotifyUser(room.UserB, matchEvent(room, room.UserB))
	}

	requestID := observability.RequestIDFromContext(ctx)
	headers := observability.HeadersFromContext(ctx)

	for _, name := range []string{observability.EventMatchCreated, observability.EventChatRoomCreated} {
		err := observability.PublishEvent(ctx, observability.RoutingKeyMatches, observability.DomainEvent(name, map[string]interface{}{
			"room_id":  room.ID,
			"place_id": room.PlaceID,
			"user_a":   room.UserA,
			"user_b":   room.UserB,
		}), headers)
		if err != nil {
			a.log.Warn("publish room event failed", zap.String("event", name), zap.String("room_id", room.ID), zap.Error(err))
		}
	}

	a.audit.EmitAction(ctx, "INFO", observability.EventChatRoomCreated, "chat room created for mutual like", requestID, nil, map[string]string{
		"room_id":  room.ID,
		"place_id": room.PlaceID,
	})
}

func matchEvent(room models.ChatRoom, recipient string) models.MatchEvent {
	return models.MatchEvent{
		Type:        "match",
		RoomID:      room.ID,
		PlaceID:     room.PlaceID,
		OtherUserID: room.OtherUser(recipient),
	}
}
