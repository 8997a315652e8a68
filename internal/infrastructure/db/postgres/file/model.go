package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		UUID    uuid.UUID
		OwnerID uuid.UUID

		Bucket           string
		StorageKey       string
		FileName         string
		OriginalName     string
		MimeType         string
		SizeBytes        int64
		StorageURL       string
		Encrypted        bool
		EncryptionKeyRef *string

		CreatedAt time.Time
		DeletedAt *time.Time
	}
	Files []*File
)
