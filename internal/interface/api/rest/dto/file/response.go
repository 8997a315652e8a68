package file

import (
	"time"

	"github.com/google/uuid"
)

type (
	File struct {
		UUID         uuid.UUID `json:"uuid"`
		OwnerID      uuid.UUID `json:"owner_id"`
		FileName     string    `json:"file_name"`
		OriginalName string    `json:"original_name"`
		MimeType     string    `json:"mime_type"`
		SizeBytes    uint64    `json:"size_bytes"`
		StorageURL   string    `json:"storage_url"`
		Encrypted    bool      `json:"encrypted"`
		CreatedAt    time.Time `json:"created_at"`
	}
	Files        []File
	ResponseData struct {
		Data Files `json:"data"`
	}
)
