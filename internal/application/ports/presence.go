package ports

import (
	"context"

	"github.com/google/uuid"
)

type PresenceStore interface {
	MarkOnline(ctx context.Context, userID uuid.UUID) (bool, error)
	MarkOffline(ctx context.Context, userID uuid.UUID) (bool, error)
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RetryTrigger starts and stops the presence-driven retries of one recipient.
type RetryTrigger interface {
	Trigger(recipientID uuid.UUID)
	Cancel(recipientID uuid.UUID)
}

type PresenceService interface {
	Online(ctx context.Context, userID uuid.UUID) (bool, error)
	Offline(ctx context.Context, userID uuid.UUID) (bool, error)
}
