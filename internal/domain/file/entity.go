package file

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("file not found")

type (
	File struct {
		UUID    uuid.UUID
		OwnerID uuid.UUID

		Bucket           string
		StorageKey       string
		FileName         string
		OriginalName     string
		MimeType         string
		SizeBytes        uint64
		StorageURL       string
		Encrypted        bool
		EncryptionKeyRef *string

		CreatedAt time.Time
		DeletedAt *time.Time
	}
	Files []*File
)

type UploadOptions struct {
	Encrypted        bool
	EncryptionKeyRef *string
}
