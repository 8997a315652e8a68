package share

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) share.Repository {
	return &Repository{db: db}
}

func scanShare(row pgx.Row) (*Share, error) {
	s := new(Share)
	err := row.Scan(
		&s.UUID,
		&s.FileID,
		&s.CreatorID,
		&s.ShareType,

		&s.RecipientID,
		&s.RecipientEmail,
		&s.GroupID,

		&s.Permissions,
		&s.PasswordHash,
		&s.ExpiresAt,
		&s.MaxAccessCount,

		&s.AccessCount,
		&s.ViewCount,
		&s.DownloadCount,
		&s.LastAccessedAt,

		&s.Revoked,
		&s.RevokedAt,
		&s.CreatedAt,
	)
	return s, err
}

func (r *Repository) fetchMany(ctx context.Context, query string, args ...any) (share.Shares, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ss Shares
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&ss), nil
}

func (r *Repository) CreateShare(ctx context.Context, req *share.Share) (*share.Share, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}

	s, err := insertShare(ctx, tx, req)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		if postgres.IsPgUniqueViolation(err) {
			return nil, share.ErrAlreadyShared
		}
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fromDBModel(s), nil
}

func insertShare(ctx context.Context, tx pgx.Tx, req *share.Share) (*Share, error) {
	if req.RecipientID != nil {
		if _, err := tx.Exec(ctx, RevokeInactiveShares, req.FileID, *req.RecipientID); err != nil {
			return nil, err
		}
	}

	return scanShare(tx.QueryRow(
		ctx,
		InsertShare,
		req.FileID, req.CreatorID, string(req.Type), req.RecipientID, req.RecipientEmail, req.GroupID,
		toDBPermissions(req.Permissions), req.PasswordHash, req.ExpiresAt, toDBMaxAccess(req.MaxAccessCount),
	))
}

func (r *Repository) FetchShare(ctx context.Context, id uuid.UUID) (*share.Share, error) {
	s, err := scanShare(r.db.QueryRow(ctx, SelectShareByID, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	return fromDBModel(s), nil
}

func (r *Repository) RevokeShare(ctx context.Context, id uuid.UUID) (*share.Share, error) {
	s, err := scanShare(r.db.QueryRow(ctx, RevokeShareByID, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, share.ErrNotFound
		}
		return nil, err
	}

	return fromDBModel(s), nil
}

func (r *Repository) RecordAccess(ctx context.Context, id uuid.UUID, event share.AccessEvent) (*share.Share, error) {
	s, err := scanShare(r.db.QueryRow(ctx, RecordShareAccess, id, string(event)))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, share.ErrAccessDenied
		}
		return nil, err
	}

	return fromDBModel(s), nil
}

func (r *Repository) FetchReceivedShares(ctx context.Context, recipientID uuid.UUID, page int) (share.Shares, error) {
	return r.fetchMany(ctx, SelectReceivedShares, recipientID, postgres.Offset(page, pageSize))
}

func (r *Repository) FetchSentShares(ctx context.Context, creatorID uuid.UUID, page int) (share.Shares, error) {
	return r.fetchMany(ctx, SelectSentShares, creatorID, postgres.Offset(page, pageSize))
}
