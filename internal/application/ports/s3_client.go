package ports

import (
	"context"
	"io"
	"time"
)

type S3Client interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	GetPublicURL(key string) string
	GetBucket() string
}
