package services

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventFileShared        = "file:shared"
	EventShareRevoked      = "share:revoked"
	EventDeliveryStatus    = "delivery:status"
	EventDeliveryResent    = "delivery:resent"
	EventRetryStarted      = "delivery:retry-started"
	EventDeliveryCompleted = "delivery:completed"
	EventRetryFailed       = "delivery:retry-failed"
)

type (
	FileSharedPayload struct {
		ShareID     uuid.UUID  `json:"share_id"`
		FileID      uuid.UUID  `json:"file_id"`
		FileName    string     `json:"file_name"`
		SenderID    uuid.UUID  `json:"sender_id"`
		SenderEmail string     `json:"sender_email"`
		Permissions []string   `json:"permissions"`
		ExpiresAt   *time.Time `json:"expires_at,omitempty"`
		DeliveryID  *uuid.UUID `json:"delivery_id,omitempty"`
	}

	ShareRevokedPayload struct {
		ShareID uuid.UUID `json:"share_id"`
		FileID  uuid.UUID `json:"file_id"`
	}

	DeliveryStatusPayload struct {
		DeliveryID  uuid.UUID `json:"delivery_id"`
		ShareID     uuid.UUID `json:"share_id"`
		RecipientID uuid.UUID `json:"recipient_id"`
		Status      string    `json:"status"`
	}

	RetryPayload struct {
		FileDeliveryID uuid.UUID `json:"file_delivery_id"`
		ShareID        uuid.UUID `json:"share_id"`
		FileID         uuid.UUID `json:"file_id"`
		Attempt        int       `json:"attempt"`
		Error          string    `json:"error,omitempty"`
	}
)
