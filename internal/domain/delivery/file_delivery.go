package delivery

import (
	"time"

	"github.com/google/uuid"
)

type (
	FileDeliveryStatus string

	// FileDelivery is the durable delivery row driven by presence-triggered retries.
	FileDelivery struct {
		UUID        uuid.UUID
		FileID      uuid.UUID
		ShareID     uuid.UUID
		SenderID    uuid.UUID
		RecipientID uuid.UUID

		Status           FileDeliveryStatus
		DeliveryAttempts int
		FailureReason    string

		LastRetryAt *time.Time
		ExpiresAt   time.Time
		DeliveredAt *time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
	FileDeliveries []*FileDelivery
)

const (
	FileDeliveryPending   FileDeliveryStatus = "PENDING"
	FileDeliveryFailed    FileDeliveryStatus = "FAILED"
	FileDeliveryDelivered FileDeliveryStatus = "DELIVERED"
)

func (d *FileDelivery) RetryEligible(now time.Time, maxRetries int) bool {
	if d.Status != FileDeliveryPending && d.Status != FileDeliveryFailed {
		return false
	}
	return d.DeliveryAttempts < maxRetries && d.ExpiresAt.After(now)
}
