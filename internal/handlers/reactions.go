package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jurny-api/internal/matching"
	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
	"jurny-api/internal/telemetry"
)

const defaultReactionListLimit = 20

// Reactor records reactions and re-derives matches.
type Reactor interface {
	React(ctx context.Context, placeID, userID string, reactionType models.ReactionType) (matching.Outcome, error)
	Recheck(ctx context.Context, placeID, userID string) (matching.Match, error)
}

// ReactionHandler serves like/keep/pass endpoints.
type ReactionHandler struct {
	reactor   Reactor
	reactions repositories.ReactionRepository
	audit     *telemetry.AuditEmitter
}

// NewReactionHandler builds a ReactionHandler.
func NewReactionHandler(reactor Reactor, reactions repositories.ReactionRepository, audit *telemetry.AuditEmitter) *ReactionHandler {
	return &ReactionHandler{reactor: reactor, reactions: reactions, audit: audit}
}

// React stores the caller's reaction and reports a mutual like if one formed.
func (h *ReactionHandler) React(c *gin.Context) {
	placeID, ok := uuidParam(c, "place_id")
	if !ok {
		return
	}

	var req struct {
		Type models.ReactionType `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.reactor.React(c.Request.Context(), placeID, c.GetString(userIDContextKey), req.Type)
	if err != nil {
		switch {
		case errors.Is(err, matching.ErrInvalidReaction):
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be like, keep or pass"})
		case errors.Is(err, repositories.ErrPlaceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
		default:
			emitAudit(c, h.audit, "ERROR", "reaction.record", "reaction write failed", map[string]string{"place_id": placeID})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record reaction"})
		}
		return
	}

	if outcome.Matched {
		fields := map[string]string{"place_id": placeID}
		if outcome.Room != nil {
			fields["room_id"] = outcome.Room.ID
		}
		emitAudit(c, h.audit, "INFO", "match.detected", "mutual like", fields)
	}
	c.JSON(http.StatusOK, outcome)
}

// CheckMatch re-runs the mutual-like check from stored reactions.
func (h *ReactionHandler) CheckMatch(c *gin.Context) {
	placeID, ok := uuidParam(c, "place_id")
	if !ok {
		return
	}

	match, err := h.reactor.Recheck(c.Request.Context(), placeID, c.GetString(userIDContextKey))
	if err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check match"})
		return
	}
	c.JSON(http.StatusOK, match)
}

// GetMyReaction returns the caller's reaction to a place.
func (h *ReactionHandler) GetMyReaction(c *gin.Context) {
	placeID, ok := uuidParam(c, "place_id")
	if !ok {
		return
	}

	reaction, err := h.reactions.Get(c.Request.Context(), placeID, c.GetString(userIDContextKey))
	if err != nil {
		if errors.Is(err, repositories.ErrReactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reaction"})
		return
	}
	c.JSON(http.StatusOK, reaction)
}

// DeleteMyReaction withdraws the caller's reaction.
func (h *ReactionHandler) DeleteMyReaction(c *gin.Context) {
	placeID, ok := uuidParam(c, "place_id")
	if !ok {
		return
	}

	if err := h.reactions.Delete(c.Request.Context(), placeID, c.GetString(userIDContextKey)); err != nil {
		if errors.Is(err, repositories.ErrReactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete reaction"})
		return
	}
	c.Status(http.StatusNoContent)
}

// PlaceStats counts reactions on a place.
func (h *ReactionHandler) PlaceStats(c *gin.Context) {
	placeID, ok := uuidParam(c, "place_id")
	if !ok {
		return
	}

	stats, err := h.reactions.StatsForPlace(c.Request.Context(), placeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListMine lists the caller's reactions, newest first.
func (h *ReactionHandler) ListMine(c *gin.Context) {
	reactionType := models.ReactionType(c.Query("type"))
	if reactionType != "" && !reactionType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be like, keep or pass"})
		return
	}

	limit := defaultReactionListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > repositories.MaxFeedLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	reactions, err := h.reactions.ListForUser(c.Request.Context(), c.GetString(userIDContextKey), reactionType, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reactions"})
		return
	}
	if reactions == nil {
		reactions = []models.Reaction{}
	}
	c.JSON(http.StatusOK, gin.H{"reactions": reactions})
}
