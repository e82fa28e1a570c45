package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
	"jurny-api/internal/telemetry"
)

// PlaceHandler serves place postings.
type PlaceHandler struct {
	places repositories.PlaceRepository
	audit  *telemetry.AuditEmitter
}

// NewPlaceHandler builds a PlaceHandler.
func NewPlaceHandler(places repositories.PlaceRepository, audit *telemetry.AuditEmitter) *PlaceHandler {
	return &PlaceHandler{places: places, audit: audit}
}

// ListFeed returns the newest places posted by other users.
func (h *PlaceHandler) ListFeed(c *gin.Context) {
	h.respondFeed(c, models.PlaceFilter{Limit: repositories.DefaultFeedLimit})
}

// Search filters the feed by text, genre, tags, budget and dates.
func (h *PlaceHandler) Search(c *gin.Context) {
	filter, err := parsePlaceFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondFeed(c, filter)
}

func (h *PlaceHandler) respondFeed(c *gin.Context, filter models.PlaceFilter) {
	places, err := h.places.Feed(c.Request.Context(), c.GetString(userIDContextKey), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load places"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": nonNilPlaces(places)})
}

// ListMine returns the caller's own postings.
func (h *PlaceHandler) ListMine(c *gin.Context) {
	places, err := h.places.ListByOwner(c.Request.Context(), c.GetString(userIDContextKey), repositories.DefaultFeedLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load places"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": nonNilPlaces(places)})
}

// GetPlace returns one place.
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	placeID, ok := uuidParam(c, "place_id")
	if !ok {
		return
	}

	place, err := h.places.Get(c.Request.Context(), placeID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load place"})
		return
	}
	c.JSON(http.StatusOK, place)
}

// CreatePlace posts a new place for the caller.
func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	var input models.PlaceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !budgetRangeValid(input) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "budget_min must not exceed budget_max"})
		return
	}
	if !dateRangeValid(input) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_end must not be before date_start"})
		return
	}

	place, err := h.places.Create(c.Request.Context(), c.GetString(userIDContextKey), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create place"})
		return
	}

	emitAudit(c, h.audit, "INFO", "place.create", "place posted", map[string]string{"place_id": place.ID})
	c.JSON(http.StatusCreated, place)
}

// UpdatePlace edits a place owned by the caller.
func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	placeID, ok := h.ownedPlace(c)
	if !ok {
		return
	}

	var input models.PlaceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !budgetRangeValid(input) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "budget_min must not exceed budget_max"})
		return
	}
	if !dateRangeValid(input) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_end must not be before date_start"})
		return
	}

	place, err := h.places.Update(c.Request.Context(), placeID, c.GetString(userIDContextKey), input)
	if err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update place"})
		return
	}
	c.JSON(http.StatusOK, place)
}

// DeletePlace removes a place owned by the caller together with its
// reactions and chat rooms.
func (h *PlaceHandler) DeletePlace(c *gin.Context) {
	placeID, ok := h.ownedPlace(c)
	if !ok {
		return
	}

	if err := h.places.Delete(c.Request.Context(), placeID, c.GetString(userIDContextKey)); err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete place"})
		return
	}

	emitAudit(c, h.audit, "INFO", "place.delete", "place deleted", map[string]string{"place_id": placeID})
	c.Status(http.StatusNoContent)
}

func (h *PlaceHandler) ownedPlace(c *gin.Context) (string, bool) {
	placeID, ok := uuidParam(c, "place_id")
	if !ok {
		return "", false
	}

	place, err := h.places.Get(c.Request.Context(), placeID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return "", false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load place"})
		return "", false
	}
	if place.Owner != c.GetString(userIDContextKey) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this place"})
		return "", false
	}
	return placeID, true
}

func budgetRangeValid(input models.PlaceInput) bool {
	return input.BudgetMin == nil || input.BudgetMax == nil || *input.BudgetMin <= *input.BudgetMax
}

func dateRangeValid(input models.PlaceInput) bool {
	return input.DateStart == nil || input.DateEnd == nil || !input.DateEnd.Before(input.DateStart.Time)
}

func parsePlaceFilter(c *gin.Context) (models.PlaceFilter, error) {
	filter := models.PlaceFilter{
		Query:       c.Query("q"),
		Genre:       c.Query("genre"),
		PurposeTags: splitList(c.QueryArray("purpose_tags")),
		DemandTags:  splitList(c.QueryArray("demand_tags")),
		Limit:       repositories.DefaultFeedLimit,
	}

	var err error
	if filter.BudgetMin, err = optionalInt(c, "budget_min"); err != nil {
		return filter, err
	}
	if filter.BudgetMax, err = optionalInt(c, "budget_max"); err != nil {
		return filter, err
	}
	if filter.DateStart, err = optionalDate(c, "date_start"); err != nil {
		return filter, err
	}
	if filter.DateEnd, err = optionalDate(c, "date_end"); err != nil {
		return filter, err
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	return filter, nil
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalInt(c *gin.Context, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

func optionalDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return nil, errors.New("invalid " + key + ", expected YYYY-MM-DD")
	}
	return &v, nil
}

func nonNilPlaces(places []models.Place) []models.Place {
	if places == nil {
		return []models.Place{}
	}
	return places
}
