package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jurny-api/internal/media"
)

type signerMock struct {
	mock.Mock
}

func (m *signerMock) PresignUpload(ctx context.Context, bucket, ownerID, contentType string) (media.Upload, error) {
	args := m.Called(ctx, bucket, ownerID, contentType)
	var upload media.Upload
	if val := args.Get(0); val != nil {
		upload = val.(media.Upload)
	}
	return upload, args.Error(1)
}

var _ UploadSigner = (*media.S3Store)(nil)

func TestUploadURLNotConfigured(t *testing.T) {
	r := newTestRouter()
	r.POST("/media/upload-url", NewMediaHandler(nil).UploadURL)

	rec := doRequest(r, http.MethodPost, "/media/upload-url", `{"bucket":"avatars","content_type":"image/png"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUploadURL(t *testing.T) {
	signer := new(signerMock)
	r := newTestRouter()
	r.POST("/media/upload-url", NewMediaHandler(signer).UploadURL)

	signer.On("PresignUpload", mock.Anything, "avatars", testUserID, "image/png").Return(media.Upload{
		URL:       "https://storage.local/put",
		Bucket:    "jurny-avatars",
		Key:       testUserID + "/x.png",
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil).Once()

	rec := doRequest(r, http.MethodPost, "/media/upload-url", `{"bucket":"avatars","content_type":"image/png"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://storage.local/put", decodeBody(t, rec)["url"])
	signer.AssertExpectations(t)
}

func TestUploadURLRejectsUnknownBucket(t *testing.T) {
	signer := new(signerMock)
	r := newTestRouter()
	r.POST("/media/upload-url", NewMediaHandler(signer).UploadURL)

	signer.On("PresignUpload", mock.Anything, "secrets", testUserID, "image/png").Return(nil, media.ErrUnknownBucket).Once()

	rec := doRequest(r, http.MethodPost, "/media/upload-url", `{"bucket":"secrets","content_type":"image/png"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
