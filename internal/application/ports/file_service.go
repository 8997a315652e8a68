package ports

import (
	"context"
	"mime/multipart"

	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/user"
)

type FileService interface {
	Upload(ctx context.Context, actor user.Actor, in *multipart.FileHeader, opts file.UploadOptions) (*file.File, error)
	FindOwnFiles(ctx context.Context, actor user.Actor, page int) (file.Files, error)
	FindReceivedFiles(ctx context.Context, actor user.Actor, page int) (file.Files, error)
}
