package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jurny-api/internal/rabbitmq"
	"jurny-api/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, publisher rabbitmq.Publisher, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/debug/publisher", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"mode":        rabbitmq.PublisherMode(publisher),
			"noop_reason": rabbitmq.PublisherNoopReason(publisher),
		})
	})
}
