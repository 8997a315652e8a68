package s3

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fileshare-api/config"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := New(context.Background(), zap.NewNop(), config.S3{
		Region:          "eu-central-1",
		Endpoint:        endpoint,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketUploads:   "uploads",
	})
	require.NoError(t, err)
	return c
}

func TestClient_GetPublicURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{
			name: "aws",
			want: "https://uploads.s3.eu-central-1.amazonaws.com/files/a.txt",
		},
		{
			name:     "custom endpoint",
			endpoint: "http://minio:9000/",
			want:     "http://minio:9000/uploads/files/a.txt",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.endpoint)
			assert.Equal(t, tt.want, c.GetPublicURL("files/a.txt"))
			assert.Equal(t, "uploads", c.GetBucket())
		})
	}
}

func TestClient_PresignGet(t *testing.T) {
	c := newTestClient(t, "http://minio:9000")

	raw, err := c.PresignGet(context.Background(), "files/report.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", u.Host)
	assert.Equal(t, "/uploads/files/report.pdf", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
