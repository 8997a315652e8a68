package file

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) file.Repository {
	return &Repository{db: db}
}

func scanFile(row pgx.Row) (*File, error) {
	f := new(File)
	err := row.Scan(
		&f.UUID,
		&f.OwnerID,

		&f.Bucket,
		&f.StorageKey,
		&f.FileName,
		&f.OriginalName,
		&f.MimeType,
		&f.SizeBytes,
		&f.StorageURL,
		&f.Encrypted,
		&f.EncryptionKeyRef,

		&f.CreatedAt,
		&f.DeletedAt,
	)
	return f, err
}

func (r *Repository) fetchMany(ctx context.Context, query string, args ...any) (file.Files, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs Files
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&fs), nil
}

func (r *Repository) FetchFile(ctx context.Context, id uuid.UUID) (*file.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, SelectFileByID, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchOwnerFiles(ctx context.Context, ownerID uuid.UUID, page int) (file.Files, error) {
	return r.fetchMany(ctx, SelectOwnerFiles, ownerID, postgres.Offset(page, pageSize))
}

func (r *Repository) FetchReceivedFiles(ctx context.Context, recipientID uuid.UUID, page int) (file.Files, error) {
	return r.fetchMany(ctx, SelectReceivedFiles, recipientID, postgres.Offset(page, pageSize))
}

func (r *Repository) CreateFile(ctx context.Context, req *file.File) (*file.File, error) {
	f, err := scanFile(r.db.QueryRow(
		ctx,
		InsertFile,
		req.OwnerID, req.Bucket, req.StorageKey, req.FileName, req.OriginalName, req.MimeType,
		int64(req.SizeBytes), req.StorageURL, req.Encrypted, req.EncryptionKeyRef,
	))
	if err != nil {
		return nil, err
	}

	return fromDBModel(f), nil
}
