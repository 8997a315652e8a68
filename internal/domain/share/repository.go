package share

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateShare(ctx context.Context, req *Share) (*Share, error)
	FetchShare(ctx context.Context, id uuid.UUID) (*Share, error)
	// RevokeShare is idempotent and returns ErrNotFound only for unknown ids.
	RevokeShare(ctx context.Context, id uuid.UUID) (*Share, error)
	// RecordAccess returns ErrAccessDenied when the share is revoked, expired or at its limit.
	RecordAccess(ctx context.Context, id uuid.UUID, event AccessEvent) (*Share, error)
	FetchReceivedShares(ctx context.Context, recipientID uuid.UUID, page int) (Shares, error)
	FetchSentShares(ctx context.Context, creatorID uuid.UUID, page int) (Shares, error)
}
