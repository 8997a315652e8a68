package file

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	FetchFile(ctx context.Context, id uuid.UUID) (*File, error)
	FetchOwnerFiles(ctx context.Context, ownerID uuid.UUID, page int) (Files, error)
	// FetchReceivedFiles returns files reachable through the recipient's active shares.
	FetchReceivedFiles(ctx context.Context, recipientID uuid.UUID, page int) (Files, error)
	CreateFile(ctx context.Context, req *File) (*File, error)
}
