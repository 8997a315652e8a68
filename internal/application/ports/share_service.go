package ports

import (
	"context"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/domain/user"
)

type RecipientValidator interface {
	Validate(ctx context.Context, actorEmail, raw string) (share.Recipient, error)
}

type ShareService interface {
	ShareFile(ctx context.Context, actor user.Actor, req share.Request) (*share.BatchResult, error)
	RevokeShare(ctx context.Context, actor user.Actor, id uuid.UUID) (*share.Share, error)
	DeleteShares(ctx context.Context, actor user.Actor, ids []uuid.UUID) ([]share.DeleteResult, error)
	RecordAccess(ctx context.Context, actor user.Actor, id uuid.UUID, event share.AccessEvent, password string) (*share.AccessGrant, error)
	ListReceived(ctx context.Context, actor user.Actor, page int) (share.Shares, error)
	ListSent(ctx context.Context, actor user.Actor, page int) (share.Shares, error)
}
