package share

import (
	"time"

	"github.com/google/uuid"
)

type (
	Share struct {
		UUID      uuid.UUID
		FileID    uuid.UUID
		CreatorID uuid.UUID
		ShareType string

		RecipientID    *uuid.UUID
		RecipientEmail string
		GroupID        *uuid.UUID

		Permissions    []string
		PasswordHash   *string
		ExpiresAt      *time.Time
		MaxAccessCount *int32

		AccessCount    int32
		ViewCount      int32
		DownloadCount  int32
		LastAccessedAt *time.Time

		Revoked   bool
		RevokedAt *time.Time
		CreatedAt time.Time
	}
	Shares []*Share
)
