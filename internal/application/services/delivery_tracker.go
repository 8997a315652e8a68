package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/delivery"
)

// Notifier re-sends the notification behind a tracked delivery.
type Notifier interface {
	Notify(ctx context.Context, rec delivery.Record) error
}

type NotifierFunc func(ctx context.Context, rec delivery.Record) error

func (f NotifierFunc) Notify(ctx context.Context, rec delivery.Record) error { return f(ctx, rec) }

// EmitterNotifier re-sends through the event bus.
func EmitterNotifier(emitter ports.Emitter) Notifier {
	return NotifierFunc(func(_ context.Context, rec delivery.Record) error {
		return emitter.Emit(EventDeliveryResent, rec.RecipientID, DeliveryStatusPayload{
			DeliveryID:  rec.ID,
			ShareID:     rec.ShareID,
			RecipientID: rec.RecipientID,
			Status:      string(rec.Status),
		})
	})
}

type trackedRecord struct {
	mu   sync.Mutex
	rec  delivery.Record
	last time.Time
}

// DeliveryTracker holds delivery status records for the process lifetime.
// The map lock guards membership only; each record carries its own lock.
type DeliveryTracker struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]*trackedRecord
	byShare  map[uuid.UUID][]uuid.UUID
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewDeliveryTracker(notifier Notifier, logger *zap.Logger) *DeliveryTracker {
	return &DeliveryTracker{
		records:  make(map[uuid.UUID]*trackedRecord),
		byShare:  make(map[uuid.UUID][]uuid.UUID),
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (t *DeliveryTracker) Track(in delivery.TrackInput) uuid.UUID {
	maxRetries := in.MaxRetries
	if maxRetries <= 0 {
		maxRetries = delivery.DefaultMaxRetries
	}
	channels := in.Channels
	if len(channels) == 0 {
		channels = []delivery.Channel{delivery.ChannelPush}
	}

	now := t.now()
	e := &trackedRecord{
		rec: delivery.Record{
			ID:             uuid.New(),
			ShareID:        in.ShareID,
			SenderID:       in.SenderID,
			RecipientID:    in.RecipientID,
			RecipientEmail: in.RecipientEmail,
			Status:         delivery.StatusPending,
			MaxRetries:     maxRetries,
			Channels:       slices.Clone(channels),
			CreatedAt:      now,
		},
		last: now,
	}

	t.mu.Lock()
	t.records[e.rec.ID] = e
	t.byShare[in.ShareID] = append(t.byShare[in.ShareID], e.rec.ID)
	t.mu.Unlock()

	return e.rec.ID
}

func (t *DeliveryTracker) entry(id uuid.UUID) (*trackedRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.records[id]
	if !ok {
		return nil, delivery.ErrNotFound
	}
	return e, nil
}

func (t *DeliveryTracker) Get(id uuid.UUID) (delivery.Record, bool) {
	e, err := t.entry(id)
	if err != nil {
		return delivery.Record{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.rec), true
}

func (t *DeliveryTracker) ByShare(shareID uuid.UUID) delivery.Records {
	t.mu.RLock()
	ids := slices.Clone(t.byShare[shareID])
	t.mu.RUnlock()

	out := make(delivery.Records, 0, len(ids))
	for _, id := range ids {
		if rec, ok := t.Get(id); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Latest returns the newest record of a share for one recipient.
func (t *DeliveryTracker) Latest(shareID, recipientID uuid.UUID) (delivery.Record, bool) {
	recs := t.ByShare(shareID)
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].RecipientID == recipientID {
			return recs[i], true
		}
	}
	return delivery.Record{}, false
}

// Requeue puts a failed record back to pending for an attempt made outside
// RetryDelivery. It does not count against the record's retry budget.
func (t *DeliveryTracker) Requeue(id uuid.UUID) error {
	return t.transition(id, delivery.StatusPending, func(r *delivery.Record, _ time.Time) {
		r.FailureReason = ""
	})
}

func (t *DeliveryTracker) MarkAsSent(id uuid.UUID) error {
	return t.transition(id, delivery.StatusSent, func(r *delivery.Record, ts time.Time) {
		r.SentAt = &ts
		r.LastNotificationSent = &ts
	})
}

func (t *DeliveryTracker) MarkAsDelivered(id uuid.UUID) error {
	return t.transition(id, delivery.StatusDelivered, func(r *delivery.Record, ts time.Time) {
		if r.SentAt == nil {
			r.SentAt = &ts
		}
		r.DeliveredAt = &ts
	})
}

func (t *DeliveryTracker) MarkAsViewed(id uuid.UUID) error {
	return t.transition(id, delivery.StatusViewed, func(r *delivery.Record, ts time.Time) {
		r.ViewedAt = &ts
	})
}

func (t *DeliveryTracker) MarkAsDownloaded(id uuid.UUID) error {
	return t.transition(id, delivery.StatusDownloaded, func(r *delivery.Record, ts time.Time) {
		r.DownloadedAt = &ts
	})
}

func (t *DeliveryTracker) MarkAsFailed(id uuid.UUID, reason string) error {
	return t.transition(id, delivery.StatusFailed, func(r *delivery.Record, ts time.Time) {
		r.FailedAt = &ts
		r.FailureReason = reason
	})
}

// transition applies one state change under the record lock. A target the
// record already reached is a no-op; anything the table forbids is rejected.
func (t *DeliveryTracker) transition(
	id uuid.UUID,
	to delivery.Status,
	apply func(r *delivery.Record, ts time.Time),
) error {
	e, err := t.entry(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.rec.Status
	if delivery.Reached(from, to) {
		return nil
	}
	if !delivery.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", delivery.ErrInvalidTransition, from, to)
	}

	e.rec.Status = to
	apply(&e.rec, e.stamp(t.now()))

	return nil
}

// stamp never lets a record's timestamps run backwards, even if the clock does.
func (e *trackedRecord) stamp(now time.Time) time.Time {
	if now.Before(e.last) {
		now = e.last
	}
	e.last = now
	return now
}

// RetryDelivery re-sends a failed delivery. It returns false with no error
// when the re-send itself failed and the record went back to failed.
func (t *DeliveryTracker) RetryDelivery(ctx context.Context, id uuid.UUID) (bool, error) {
	e, err := t.entry(id)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	if e.rec.Status != delivery.StatusFailed {
		e.mu.Unlock()
		return false, delivery.ErrNotFailed
	}
	if e.rec.RetryCount >= e.rec.MaxRetries {
		e.mu.Unlock()
		return false, delivery.ErrRetriesExhausted
	}
	e.rec.RetryCount++
	e.rec.Status = delivery.StatusPending
	e.rec.FailureReason = ""
	rec := snapshot(e.rec)
	e.mu.Unlock()

	if err = t.notifier.Notify(ctx, rec); err != nil {
		if ferr := t.MarkAsFailed(id, err.Error()); ferr != nil {
			t.logger.Debug("retry outcome superseded", zap.Stringer("delivery_id", id), zap.Error(ferr))
		}
		return false, nil
	}

	if err = t.MarkAsSent(id); err != nil {
		t.logger.Debug("retry outcome superseded", zap.Stringer("delivery_id", id), zap.Error(err))
	}
	return true, nil
}

// Analytics aggregates records whose sentAt falls in [from, to).
func (t *DeliveryTracker) Analytics(from, to time.Time) delivery.Analytics {
	return t.aggregate(from, to, func(delivery.Record) bool { return true })
}

// SenderAnalytics is Analytics restricted to deliveries of shares senderID created.
func (t *DeliveryTracker) SenderAnalytics(senderID uuid.UUID, from, to time.Time) delivery.Analytics {
	return t.aggregate(from, to, func(r delivery.Record) bool { return r.SenderID == senderID })
}

func (t *DeliveryTracker) aggregate(from, to time.Time, keep func(delivery.Record) bool) delivery.Analytics {
	t.mu.RLock()
	entries := make([]*trackedRecord, 0, len(t.records))
	for _, e := range t.records {
		entries = append(entries, e)
	}
	t.mu.RUnlock()

	a := delivery.Analytics{From: from, To: to}
	var (
		total     time.Duration
		delivered int
	)
	for _, e := range entries {
		e.mu.Lock()
		r := e.rec
		e.mu.Unlock()

		if !keep(r) || r.SentAt == nil || r.SentAt.Before(from) || !r.SentAt.Before(to) {
			continue
		}
		a.TotalSent++
		if r.ViewedAt != nil {
			a.Viewed++
		}
		if r.DownloadedAt != nil {
			a.Downloaded++
		}
		if r.Status == delivery.StatusFailed {
			a.Failed++
		}
		if r.DeliveredAt == nil {
			a.RecentFailures++
			continue
		}
		delivered++
		total += r.DeliveredAt.Sub(*r.SentAt)
	}

	a.Delivered = delivered
	if delivered > 0 {
		a.AverageDeliveryTime = total / time.Duration(delivered)
	}
	if a.TotalSent > 0 {
		a.DeliveryRate = float64(delivered) / float64(a.TotalSent)
	}

	return a
}

func snapshot(r delivery.Record) delivery.Record {
	r.Channels = slices.Clone(r.Channels)
	return r
}

var _ ports.DeliveryTracker = (*DeliveryTracker)(nil)
