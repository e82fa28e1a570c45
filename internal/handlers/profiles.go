package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
	"jurny-api/internal/telemetry"
)

// ProfileHandler serves the user profile endpoints.
type ProfileHandler struct {
	profiles  repositories.ProfileRepository
	places    repositories.PlaceRepository
	reactions repositories.ReactionRepository
	audit     *telemetry.AuditEmitter
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profiles repositories.ProfileRepository, places repositories.PlaceRepository, reactions repositories.ReactionRepository, audit *telemetry.AuditEmitter) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, places: places, reactions: reactions, audit: audit}
}

// GetMyProfile returns the caller's profile.
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	h.respondProfile(c, c.GetString(userIDContextKey))
}

// GetProfile returns another user's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	h.respondProfile(c, userID)
}

func (h *ProfileHandler) respondProfile(c *gin.Context, userID string) {
	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertMyProfile creates or replaces the caller's profile.
func (h *ProfileHandler) UpsertMyProfile(c *gin.Context) {
	var input models.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.Upsert(c.Request.Context(), c.GetString(userIDContextKey), input)
	if err != nil {
		emitAudit(c, h.audit, "ERROR", "profile.upsert", "profile save failed", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	emitAudit(c, h.audit, "INFO", "profile.upsert", "profile saved", nil)
	c.JSON(http.StatusOK, profile)
}

// ProfileExists reports whether the caller has completed onboarding.
func (h *ProfileHandler) ProfileExists(c *gin.Context) {
	exists, err := h.profiles.Exists(c.Request.Context(), c.GetString(userIDContextKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// GetMyStats counts the caller's postings and reactions.
func (h *ProfileHandler) GetMyStats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(userIDContextKey)

	posted, err := h.places.CountByOwner(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	counts, err := h.reactions.CountByTypeForUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, models.ProfileStats{
		PostedCount: posted,
		LikedCount:  counts[models.ReactionLike],
		KeptCount:   counts[models.ReactionKeep],
		PassedCount: counts[models.ReactionPass],
	})
}
