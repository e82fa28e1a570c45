package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"jurny-api/internal/models"
	"jurny-api/internal/observability"
	"jurny-api/internal/repositories"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RoomReader loads a chat room.
type RoomReader interface {
	Get(ctx context.Context, roomID string) (models.ChatRoom, error)
}

// Handler upgrades room and notification websocket connections.
type Handler struct {
	hub      *Hub
	rooms    RoomReader
	verifier TokenVerifier
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, rooms RoomReader, verifier TokenVerifier) *Handler {
	return &Handler{hub: hub, rooms: rooms, verifier: verifier}
}

// HandleRoom subscribes a participant to the live events of a room.
func (h *Handler) HandleRoom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	roomID := id.String()

	ctx, span := otel.Tracer("jurny-api/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.verifier.Verify(tokenFromRequest(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	room, err := h.rooms.Get(ctx, roomID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrChatRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "chat room not found"})
		return
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := h.connInfo(c, userID, span.SpanContext().TraceID().String())
	h.hub.AddRoomClient(roomID, conn, info)
	go h.serve(ctx, KindRoom, roomID, conn, info, func() { h.hub.RemoveRoomClient(roomID, conn) })
}

// HandleNotifications subscribes a user to match notifications.
func (h *Handler) HandleNotifications(c *gin.Context) {
	ctx, span := otel.Tracer("jurny-api/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.verifier.Verify(tokenFromRequest(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := h.connInfo(c, userID, span.SpanContext().TraceID().String())
	h.hub.AddUserClient(userID, conn, info)
	go h.serve(ctx, KindUser, userID, conn, info, func() { h.hub.RemoveUserClient(userID, conn) })
}

func (h *Handler) connInfo(c *gin.Context, userID, traceID string) ConnInfo {
	return ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}

// serve keeps the connection alive until the peer leaves, then cleans up.
func (h *Handler) serve(ctx context.Context, kind, resourceID string, conn *websocket.Conn, info ConnInfo, unregister func()) {
	ctx = context.WithoutCancel(ctx)
	observability.IncWSActive(kind)
	publishWSEvent(ctx, kind, resourceID, "ws_connect", info, "")

	reason, abnormal := drain(conn)
	if abnormal {
		publishWSEvent(ctx, kind, resourceID, "ws_error", info, reason)
	}

	unregister()
	observability.DecWSActive(kind)
	publishWSEvent(ctx, kind, resourceID, "ws_disconnect", info, reason)
	conn.Close()
}
