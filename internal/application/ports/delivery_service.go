package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/user"
)

// DeliveryTracker owns the process-lifetime delivery status records.
type DeliveryTracker interface {
	Track(in delivery.TrackInput) uuid.UUID
	Get(id uuid.UUID) (delivery.Record, bool)
	ByShare(shareID uuid.UUID) delivery.Records
	Latest(shareID, recipientID uuid.UUID) (delivery.Record, bool)
	Requeue(id uuid.UUID) error
	MarkAsSent(id uuid.UUID) error
	MarkAsDelivered(id uuid.UUID) error
	MarkAsViewed(id uuid.UUID) error
	MarkAsDownloaded(id uuid.UUID) error
	MarkAsFailed(id uuid.UUID, reason string) error
	RetryDelivery(ctx context.Context, id uuid.UUID) (bool, error)
	Analytics(from, to time.Time) delivery.Analytics
	SenderAnalytics(senderID uuid.UUID, from, to time.Time) delivery.Analytics
}

type DeliveryService interface {
	HandleAction(ctx context.Context, actor user.Actor, req delivery.ActionRequest) (*delivery.ActionResult, error)
	ShareStatus(ctx context.Context, actor user.Actor, shareID uuid.UUID) (*delivery.ShareStatus, error)
	Analytics(ctx context.Context, actor user.Actor, from, to time.Time) delivery.Analytics
	RecipientDeliveries(ctx context.Context, actor user.Actor, recipientID uuid.UUID, page int) (delivery.FileDeliveries, error)
}
