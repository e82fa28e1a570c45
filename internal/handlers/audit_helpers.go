package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jurny-api/internal/telemetry"
)

const (
	requestIDContextKey = "request_id"
	userIDContextKey    = "userID"
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if id := c.GetString(userIDContextKey); id != "" {
		return &id
	}
	return nil
}

func emitAudit(c *gin.Context, audit *telemetry.AuditEmitter, level, action, text string, fields map[string]string) {
	if audit == nil {
		return
	}
	audit.EmitAction(c.Request.Context(), level, action, text, requestIDFromContext(c), userIDFromContext(c), fields)
}

// uuidParam reads a path parameter that must be a UUID, answering 400 otherwise.
func uuidParam(c *gin.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return "", false
	}
	return id.String(), true
}
