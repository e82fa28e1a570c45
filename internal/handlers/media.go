package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jurny-api/internal/media"
)

// UploadSigner issues presigned upload targets.
type UploadSigner interface {
	PresignUpload(ctx context.Context, bucket, ownerID, contentType string) (media.Upload, error)
}

// MediaHandler hands out image upload URLs.
type MediaHandler struct {
	signer UploadSigner
}

// NewMediaHandler builds a MediaHandler. signer may be nil when object
// storage is not configured.
func NewMediaHandler(signer UploadSigner) *MediaHandler {
	return &MediaHandler{signer: signer}
}

func (h *MediaHandler) UploadURL(c *gin.Context) {
	if h.signer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
		return
	}

	var req struct {
		Bucket      string `json:"bucket" binding:"required"`
		ContentType string `json:"content_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload, err := h.signer.PresignUpload(c.Request.Context(), req.Bucket, c.GetString(userIDContextKey), req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrUnknownBucket), errors.Is(err, media.ErrUnsupportedContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not sign upload"})
		}
		return
	}
	c.JSON(http.StatusOK, upload)
}
