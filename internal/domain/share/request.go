package share

import (
	"time"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/file"
)

type (
	// Request shares one file with many recipients; every recipient is handled on its own.
	Request struct {
		FileID         uuid.UUID
		Recipients     []string
		GroupIDs       []uuid.UUID
		Permissions    []string
		ExpiresAt      *time.Time
		Password       string
		MaxAccessCount *int
		Channels       []string
	}

	Result struct {
		Email   string
		GroupID *uuid.UUID
		ShareID *uuid.UUID
		Success bool
		Error   string
	}

	BatchResult struct {
		SuccessfulShares int
		FailedShares     int
		Results          []Result
	}

	// AccessGrant is handed to the recipient after a recorded access.
	AccessGrant struct {
		Share       *Share
		File        *file.File
		DownloadURL string
	}

	DeleteResult struct {
		ShareID uuid.UUID
		Success bool
		Error   string
	}
)

func NewBatchResult(results []Result) *BatchResult {
	br := &BatchResult{Results: results}
	for _, r := range results {
		if r.Success {
			br.SuccessfulShares++
		} else {
			br.FailedShares++
		}
	}
	return br
}
