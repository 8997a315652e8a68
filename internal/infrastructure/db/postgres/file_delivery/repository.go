package file_delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) delivery.Repository {
	return &Repository{db: db}
}

func scanFileDelivery(row pgx.Row) (*FileDelivery, error) {
	d := new(FileDelivery)
	err := row.Scan(
		&d.UUID,
		&d.FileID,
		&d.ShareID,
		&d.SenderID,
		&d.RecipientID,

		&d.Status,
		&d.DeliveryAttempts,
		&d.FailureReason,

		&d.LastRetryAt,
		&d.ExpiresAt,
		&d.DeliveredAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func (r *Repository) fetchMany(ctx context.Context, query string, args ...any) (delivery.FileDeliveries, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ds FileDeliveries
	for rows.Next() {
		d, err := scanFileDelivery(rows)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(&ds), nil
}

// fetchOne runs a conditional update; a miss is reported as missErr.
func (r *Repository) fetchOne(ctx context.Context, missErr error, query string, args ...any) (*delivery.FileDelivery, error) {
	d, err := scanFileDelivery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, missErr
		}
		return nil, err
	}

	return fromDBModel(d), nil
}

func (r *Repository) CreateFileDelivery(ctx context.Context, req *delivery.FileDelivery) (*delivery.FileDelivery, error) {
	d, err := scanFileDelivery(r.db.QueryRow(
		ctx,
		InsertFileDelivery,
		req.FileID, req.ShareID, req.SenderID, req.RecipientID, req.ExpiresAt,
	))
	if err != nil {
		return nil, err
	}

	return fromDBModel(d), nil
}

func (r *Repository) FetchRetryable(ctx context.Context, recipientID uuid.UUID, maxRetries int) (delivery.FileDeliveries, error) {
	return r.fetchMany(ctx, SelectRetryable, recipientID, maxRetries)
}

func (r *Repository) FetchByRecipient(ctx context.Context, recipientID uuid.UUID, page int) (delivery.FileDeliveries, error) {
	return r.fetchMany(ctx, SelectByRecipient, recipientID, postgres.Offset(page, pageSize))
}

func (r *Repository) FetchByShare(ctx context.Context, shareID uuid.UUID) (delivery.FileDeliveries, error) {
	return r.fetchMany(ctx, SelectByShare, shareID)
}

func (r *Repository) StartRetry(ctx context.Context, id uuid.UUID, expectedAttempts int) (*delivery.FileDelivery, error) {
	return r.fetchOne(ctx, delivery.ErrConcurrentUpdate, StartRetryByID, id, expectedAttempts)
}

func (r *Repository) MarkDelivered(ctx context.Context, id uuid.UUID) (*delivery.FileDelivery, error) {
	return r.fetchOne(ctx, delivery.ErrNotFound, MarkDeliveredByID, id)
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*delivery.FileDelivery, error) {
	return r.fetchOne(ctx, delivery.ErrNotFound, MarkFailedByID, id, reason)
}
