package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
	"jurny-api/internal/telemetry"
)

// ChatRoomHandler serves the match chat room endpoints.
type ChatRoomHandler struct {
	rooms repositories.ChatRoomRepository
	audit *telemetry.AuditEmitter
}

// NewChatRoomHandler builds a ChatRoomHandler.
func NewChatRoomHandler(rooms repositories.ChatRoomRepository, audit *telemetry.AuditEmitter) *ChatRoomHandler {
	return &ChatRoomHandler{rooms: rooms, audit: audit}
}

type latestMessage struct {
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

type roomResponse struct {
	ID            string                `json:"id"`
	PlaceID       string                `json:"place_id"`
	PlaceTitle    *string               `json:"place_title,omitempty"`
	OtherUser     models.ProfileSummary `json:"other_user"`
	LatestMessage *latestMessage        `json:"latest_message,omitempty"`
	UnreadCount   int                   `json:"unread_count"`
	CreatedAt     time.Time             `json:"created_at"`
}

func toRoomResponse(s models.ChatRoomSummary) roomResponse {
	resp := roomResponse{
		ID:          s.ID,
		PlaceID:     s.PlaceID,
		PlaceTitle:  s.PlaceTitle,
		OtherUser:   models.ProfileSummary{ID: s.OtherUserID, AvatarURL: s.OtherUserAvatar},
		UnreadCount: s.UnreadCount,
		CreatedAt:   s.CreatedAt,
	}
	if s.OtherUserName != nil {
		resp.OtherUser.Name = *s.OtherUserName
	}
	if s.LatestBody != nil && s.LatestSentAt != nil {
		resp.LatestMessage = &latestMessage{Body: *s.LatestBody, SentAt: *s.LatestSentAt}
	}
	return resp
}

// ListRooms returns the caller's rooms, most recent activity first.
func (h *ChatRoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListForUser(c.Request.Context(), c.GetString(userIDContextKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat rooms"})
		return
	}

	responses := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, toRoomResponse(room))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": responses})
}

// UnreadCount totals unread messages across the caller's rooms.
func (h *ChatRoomHandler) UnreadCount(c *gin.Context) {
	count, err := h.rooms.UnreadCount(c.Request.Context(), c.GetString(userIDContextKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// GetRoom returns a room the caller participates in.
func (h *ChatRoomHandler) GetRoom(c *gin.Context) {
	room, ok := participantRoom(c, h.rooms)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom removes a room and its messages.
func (h *ChatRoomHandler) DeleteRoom(c *gin.Context) {
	room, ok := participantRoom(c, h.rooms)
	if !ok {
		return
	}

	if err := h.rooms.Delete(c.Request.Context(), room.ID); err != nil {
		if errors.Is(err, repositories.ErrChatRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete chat room"})
		return
	}

	emitAudit(c, h.audit, "INFO", "chat_room.delete", "chat room deleted", map[string]string{"room_id": room.ID})
	c.Status(http.StatusNoContent)
}

// participantRoom loads :room_id and answers 400/404/403/500 itself when the
// caller may not use it.
func participantRoom(c *gin.Context, rooms repositories.ChatRoomRepository) (models.ChatRoom, bool) {
	roomID, ok := uuidParam(c, "room_id")
	if !ok {
		return models.ChatRoom{}, false
	}

	room, err := rooms.Get(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat room not found"})
			return models.ChatRoom{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat room"})
		return models.ChatRoom{}, false
	}
	if !room.HasParticipant(c.GetString(userIDContextKey)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat room member"})
		return models.ChatRoom{}, false
	}
	return room, true
}
