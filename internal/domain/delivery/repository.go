package delivery

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateFileDelivery(ctx context.Context, req *FileDelivery) (*FileDelivery, error)
	// FetchRetryable returns PENDING/FAILED rows with attempts below maxRetries that have not expired.
	FetchRetryable(ctx context.Context, recipientID uuid.UUID, maxRetries int) (FileDeliveries, error)
	FetchByRecipient(ctx context.Context, recipientID uuid.UUID, page int) (FileDeliveries, error)
	FetchByShare(ctx context.Context, shareID uuid.UUID) (FileDeliveries, error)
	// StartRetry bumps the attempt counter only if it still equals expectedAttempts,
	// otherwise ErrConcurrentUpdate.
	StartRetry(ctx context.Context, id uuid.UUID, expectedAttempts int) (*FileDelivery, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (*FileDelivery, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*FileDelivery, error)
}
