package file_delivery

import (
	"time"

	"github.com/google/uuid"
)

type (
	FileDelivery struct {
		UUID        uuid.UUID
		FileID      uuid.UUID
		ShareID     uuid.UUID
		SenderID    uuid.UUID
		RecipientID uuid.UUID

		Status           string
		DeliveryAttempts int32
		FailureReason    string

		LastRetryAt *time.Time
		ExpiresAt   time.Time
		DeliveredAt *time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
	FileDeliveries []*FileDelivery
)
