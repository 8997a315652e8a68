package share

import (
	"time"

	"github.com/google/uuid"

	"fileshare-api/internal/interface/api/rest/dto/file"
)

type (
	Result struct {
		Email   string     `json:"email,omitempty"`
		GroupID *uuid.UUID `json:"groupId,omitempty"`
		ShareID *uuid.UUID `json:"shareId,omitempty"`
		Success bool       `json:"success"`
		Error   string     `json:"error,omitempty"`
	}

	BatchResponse struct {
		SuccessfulShares int      `json:"successfulShares"`
		FailedShares     int      `json:"failedShares"`
		Results          []Result `json:"results"`
	}

	DeleteResult struct {
		ShareID uuid.UUID `json:"shareId"`
		Success bool      `json:"success"`
		Error   string    `json:"error,omitempty"`
	}

	Share struct {
		UUID           uuid.UUID  `json:"id"`
		FileID         uuid.UUID  `json:"fileId"`
		CreatorID      uuid.UUID  `json:"creatorId"`
		Type           string     `json:"type"`
		RecipientID    *uuid.UUID `json:"recipientId,omitempty"`
		RecipientEmail string     `json:"recipientEmail,omitempty"`
		GroupID        *uuid.UUID `json:"groupId,omitempty"`
		Permissions    []string   `json:"permissions"`
		HasPassword    bool       `json:"hasPassword"`
		ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
		MaxAccessCount *int       `json:"maxAccessCount,omitempty"`
		AccessCount    int        `json:"accessCount"`
		ViewCount      int        `json:"viewCount"`
		DownloadCount  int        `json:"downloadCount"`
		LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
		Revoked        bool       `json:"revoked"`
		RevokedAt      *time.Time `json:"revokedAt,omitempty"`
		CreatedAt      time.Time  `json:"createdAt"`
	}
	Shares       []Share
	ResponseData struct {
		Data Shares `json:"data"`
	}

	AccessResponse struct {
		Share       Share     `json:"share"`
		File        file.File `json:"file"`
		DownloadURL string    `json:"downloadUrl,omitempty"`
	}
)
