package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
)

const (
	recentMessageLimit = 50
	maxMessageLength   = 2000
)

// RoomBroadcaster pushes room events to connected websocket clients.
type RoomBroadcaster interface {
	BroadcastRoomMessage(roomID string, msg models.Message)
	BroadcastRoomRead(roomID, readerID string, messageIDs []string)
}

// MessageHandler serves chat messages inside a room.
type MessageHandler struct {
	rooms    repositories.ChatRoomRepository
	messages repositories.MessageRepository
	hub      RoomBroadcaster
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(rooms repositories.ChatRoomRepository, messages repositories.MessageRepository, hub RoomBroadcaster) *MessageHandler {
	return &MessageHandler{rooms: rooms, messages: messages, hub: hub}
}

// ListMessages returns the latest messages oldest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	room, ok := participantRoom(c, h.rooms)
	if !ok {
		return
	}

	msgs, err := h.messages.ListRecent(c.Request.Context(), room.ID, recentMessageLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage stores a message and broadcasts it to the room.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	room, ok := participantRoom(c, h.rooms)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" || len([]rune(body)) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message body must be 1-2000 characters"})
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), room.ID, c.GetString(userIDContextKey), body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastRoomMessage(room.ID, msg)
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkRead marks the given messages from the other participant as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	room, ok := participantRoom(c, h.rooms)
	if !ok {
		return
	}

	var req struct {
		IDs []string `json:"ids" binding:"required,min=1,max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, id := range req.IDs {
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
			return
		}
	}

	readerID := c.GetString(userIDContextKey)
	updated, err := h.messages.MarkRead(c.Request.Context(), room.ID, readerID, req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark messages read"})
		return
	}
	h.respondRead(c, room.ID, readerID, updated)
}

// MarkRoomRead marks every unread message from the other participant as read.
func (h *MessageHandler) MarkRoomRead(c *gin.Context) {
	room, ok := participantRoom(c, h.rooms)
	if !ok {
		return
	}

	readerID := c.GetString(userIDContextKey)
	updated, err := h.messages.MarkRoomRead(c.Request.Context(), room.ID, readerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark room read"})
		return
	}
	h.respondRead(c, room.ID, readerID, updated)
}

func (h *MessageHandler) respondRead(c *gin.Context, roomID, readerID string, updated []string) {
	if updated == nil {
		updated = []string{}
	}
	if h.hub != nil {
		h.hub.BroadcastRoomRead(roomID, readerID, updated)
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
