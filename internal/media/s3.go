// Package media issues presigned upload URLs for user images.
package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadTTL = 15 * time.Minute

var (
	ErrUnknownBucket      = errors.New("unknown bucket")
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// Buckets a client may upload into.
var Buckets = map[string]struct{}{
	"avatars":      {},
	"place-images": {},
}

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Upload is a presigned PUT target.
type Upload struct {
	URL       string    `json:"url"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type putPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error)
}

// PresignedRequest mirrors the fields of the SDK result that callers use.
type PresignedRequest struct {
	URL string
}

type sdkPresigner struct {
	client *s3.PresignClient
}

func (p sdkPresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	req, err := p.client.PresignPutObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedRequest{URL: req.URL}, nil
}

// S3Store signs uploads into "<prefix><bucket>".
type S3Store struct {
	presigner    putPresigner
	bucketPrefix string
	now          func() time.Time
}

// NewS3Store loads the default AWS config. A non-empty endpoint targets an
// S3 compatible server with path-style addressing.
func NewS3Store(ctx context.Context, region, bucketPrefix, endpoint string) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{
		presigner:    sdkPresigner{client: s3.NewPresignClient(client)},
		bucketPrefix: bucketPrefix,
		now:          time.Now,
	}, nil
}

// PresignUpload returns a URL the owner can PUT one image to.
func (s *S3Store) PresignUpload(ctx context.Context, bucket, ownerID, contentType string) (Upload, error) {
	if _, ok := Buckets[bucket]; !ok {
		return Upload{}, ErrUnknownBucket
	}
	ext, ok := extensions[contentType]
	if !ok {
		return Upload{}, ErrUnsupportedContent
	}

	key := fmt.Sprintf("%s/%s.%s", ownerID, uuid.NewString(), ext)
	target := s.bucketPrefix + bucket
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(target),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadTTL))
	if err != nil {
		return Upload{}, fmt.Errorf("presign upload: %w", err)
	}

	return Upload{
		URL:       req.URL,
		Bucket:    target,
		Key:       key,
		ExpiresAt: s.now().Add(uploadTTL),
	}, nil
}
