package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fileshare-api/config"
	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/infrastructure/realtime"
)

const failWriteTimeout = 5 * time.Second

var (
	ErrNoListener    = errors.New("recipient has no live connection")
	ErrDeliveryPanic = errors.New("delivery attempt panicked")
)

// Deliverer performs one delivery attempt for a durable delivery row.
type Deliverer interface {
	Deliver(ctx context.Context, fd *delivery.FileDelivery) error
}

type DelivererFunc func(ctx context.Context, fd *delivery.FileDelivery) error

func (f DelivererFunc) Deliver(ctx context.Context, fd *delivery.FileDelivery) error { return f(ctx, fd) }

// HubDeliverer counts a delivery as done once a live stream of the recipient
// on this instance accepted the notification.
type HubDeliverer struct {
	hub ports.RealtimeHub
}

func NewHubDeliverer(hub ports.RealtimeHub) *HubDeliverer {
	return &HubDeliverer{hub: hub}
}

func (d *HubDeliverer) Deliver(ctx context.Context, fd *delivery.FileDelivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(FileSharedPayload{
		ShareID:  fd.ShareID,
		FileID:   fd.FileID,
		SenderID: fd.SenderID,
	})
	if err != nil {
		return err
	}
	if d.hub.Send(fd.RecipientID, realtime.Message{Name: EventFileShared, Data: data}) == 0 {
		return ErrNoListener
	}
	return nil
}

// RetryScheduler re-attempts a recipient's pending and failed deliveries when
// they come online. Every row runs in its own goroutine with its own timeout;
// a failing or panicking row never affects the others. Outcomes are written to
// the durable row and to the newest tracker record of the same share and recipient.
type RetryScheduler struct {
	deliveryRepository delivery.Repository
	shareRepository    share.Repository
	tracker            ports.DeliveryTracker
	deliverer          Deliverer
	emitter            ports.Emitter
	cfg                config.Delivery
	logger             *zap.Logger
	mCounter           *prometheus.CounterVec
	mDuration          *prometheus.HistogramVec
	now                func() time.Time

	base     context.Context
	wg       sync.WaitGroup
	mu       sync.Mutex
	nextID   uint64
	inflight map[uuid.UUID]map[uint64]context.CancelFunc
}

func NewRetryScheduler(
	ctx context.Context,
	deliveryRepository delivery.Repository,
	shareRepository share.Repository,
	tracker ports.DeliveryTracker,
	deliverer Deliverer,
	emitter ports.Emitter,
	cfg config.Delivery,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
	mDuration *prometheus.HistogramVec,
) *RetryScheduler {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = delivery.DefaultMaxRetries
	}
	return &RetryScheduler{
		deliveryRepository: deliveryRepository,
		shareRepository:    shareRepository,
		tracker:            tracker,
		deliverer:          deliverer,
		emitter:            emitter,
		cfg:                cfg,
		logger:             logger,
		mCounter:           mCounter,
		mDuration:          mDuration,
		now:                time.Now,
		base:               ctx,
		inflight:           make(map[uuid.UUID]map[uint64]context.CancelFunc),
	}
}

// Trigger scans in the background; the caller never waits for the retries.
func (rs *RetryScheduler) Trigger(recipientID uuid.UUID) {
	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		n, err := rs.ScanAndRetry(rs.base, recipientID)
		if err != nil {
			rs.logger.Error("retry scan failed", zap.Stringer("recipient_id", recipientID), zap.Error(err))
			return
		}
		if n > 0 {
			rs.logger.Info("delivery retries started", zap.Stringer("recipient_id", recipientID), zap.Int("rows", n))
		}
	}()
}

// ScanAndRetry starts one attempt per eligible row and returns how many it started.
func (rs *RetryScheduler) ScanAndRetry(ctx context.Context, recipientID uuid.UUID) (int, error) {
	rows, err := rs.deliveryRepository.FetchRetryable(ctx, recipientID, rs.cfg.MaxRetries)
	if err != nil {
		return 0, err
	}

	now := rs.now()
	shares := make(map[uuid.UUID]*share.Share)
	var started int
	for _, fd := range rows {
		if !fd.RetryEligible(now, rs.cfg.MaxRetries) {
			continue
		}

		s, ok := shares[fd.ShareID]
		if !ok {
			if s, err = rs.shareRepository.FetchShare(ctx, fd.ShareID); err != nil {
				rs.logger.Error("FetchShare() error", zap.Stringer("share_id", fd.ShareID), zap.Error(err))
				continue
			}
			shares[fd.ShareID] = s
		}
		if s == nil || !s.Active(now) {
			rs.logger.Debug("skipping delivery of inactive share", zap.Stringer("file_delivery_id", fd.UUID))
			continue
		}

		rs.spawn(recipientID, fd)
		started++
	}

	return started, nil
}

func (rs *RetryScheduler) spawn(recipientID uuid.UUID, fd *delivery.FileDelivery) {
	ctx, cancel := context.WithTimeout(rs.base, rs.cfg.RetryTimeout)
	key := rs.register(recipientID, cancel)

	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		defer rs.release(recipientID, key, cancel)
		defer func() {
			if r := recover(); r != nil {
				rs.logger.Error("delivery retry panicked",
					zap.Stringer("file_delivery_id", fd.UUID), zap.Any("panic", r))
			}
		}()

		rs.attempt(ctx, fd)
	}()
}

func (rs *RetryScheduler) attempt(ctx context.Context, fd *delivery.FileDelivery) {
	start := time.Now()

	claimed, err := rs.deliveryRepository.StartRetry(ctx, fd.UUID, fd.DeliveryAttempts)
	if err != nil {
		if errors.Is(err, delivery.ErrConcurrentUpdate) {
			rs.logger.Debug("retry claimed elsewhere", zap.Stringer("file_delivery_id", fd.UUID))
			return
		}
		rs.logger.Error("StartRetry() error", zap.Stringer("file_delivery_id", fd.UUID), zap.Error(err))
		return
	}

	payload := RetryPayload{
		FileDeliveryID: claimed.UUID,
		ShareID:        claimed.ShareID,
		FileID:         claimed.FileID,
		Attempt:        claimed.DeliveryAttempts,
	}
	rs.track(claimed, func(rec delivery.Record) error {
		if rec.Status != delivery.StatusFailed {
			return nil
		}
		return rs.tracker.Requeue(rec.ID)
	})
	rs.emit(EventRetryStarted, claimed.RecipientID, payload)

	if err = rs.deliver(ctx, claimed); err != nil {
		rs.fail(ctx, claimed, payload, err)
		rs.observe("failed", start)
		return
	}

	if _, err = rs.deliveryRepository.MarkDelivered(context.WithoutCancel(ctx), claimed.UUID); err != nil {
		rs.logger.Error("MarkDelivered() error", zap.Stringer("file_delivery_id", claimed.UUID), zap.Error(err))
		rs.observe("error", start)
		return
	}
	rs.track(claimed, func(rec delivery.Record) error {
		return rs.tracker.MarkAsDelivered(rec.ID)
	})
	rs.emit(EventDeliveryCompleted, claimed.RecipientID, payload)
	rs.mCounter.WithLabelValues("delivery_retry_delivered_total").Inc()
	rs.observe("delivered", start)
}

func (rs *RetryScheduler) deliver(ctx context.Context, fd *delivery.FileDelivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrDeliveryPanic, r)
		}
	}()
	return rs.deliverer.Deliver(ctx, fd)
}

// fail records the failure even when the attempt context is already done.
func (rs *RetryScheduler) fail(ctx context.Context, fd *delivery.FileDelivery, payload RetryPayload, cause error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failWriteTimeout)
	defer cancel()

	if _, err := rs.deliveryRepository.MarkFailed(wctx, fd.UUID, cause.Error()); err != nil {
		rs.logger.Error("MarkFailed() error", zap.Stringer("file_delivery_id", fd.UUID), zap.Error(err))
	}

	rs.track(fd, func(rec delivery.Record) error {
		return rs.tracker.MarkAsFailed(rec.ID, cause.Error())
	})

	payload.Error = cause.Error()
	rs.emit(EventRetryFailed, fd.SenderID, payload)
	rs.mCounter.WithLabelValues("delivery_retry_failed_total").Inc()
	rs.logger.Warn("delivery retry failed",
		zap.Stringer("file_delivery_id", fd.UUID),
		zap.Int("attempt", fd.DeliveryAttempts),
		zap.Error(cause),
	)
}

// track applies fn to the newest tracker record of the row's share and
// recipient. Rows that outlived a restart have no record and are skipped.
func (rs *RetryScheduler) track(fd *delivery.FileDelivery, fn func(rec delivery.Record) error) {
	if rs.tracker == nil {
		return
	}
	rec, ok := rs.tracker.Latest(fd.ShareID, fd.RecipientID)
	if !ok {
		return
	}
	if err := fn(rec); err != nil {
		rs.logger.Debug("delivery status not updated", zap.Stringer("delivery_id", rec.ID), zap.Error(err))
	}
}

func (rs *RetryScheduler) emit(name string, recipientID uuid.UUID, payload RetryPayload) {
	if err := rs.emitter.Emit(name, recipientID, payload); err != nil {
		rs.logger.Debug("retry event not queued", zap.String("event", name), zap.Error(err))
	}
}

func (rs *RetryScheduler) observe(outcome string, start time.Time) {
	if rs.mDuration != nil {
		rs.mDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

func (rs *RetryScheduler) register(recipientID uuid.UUID, cancel context.CancelFunc) uint64 {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.nextID++
	if rs.inflight[recipientID] == nil {
		rs.inflight[recipientID] = make(map[uint64]context.CancelFunc)
	}
	rs.inflight[recipientID][rs.nextID] = cancel
	return rs.nextID
}

func (rs *RetryScheduler) release(recipientID uuid.UUID, key uint64, cancel context.CancelFunc) {
	cancel()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.inflight[recipientID], key)
	if len(rs.inflight[recipientID]) == 0 {
		delete(rs.inflight, recipientID)
	}
}

// Cancel aborts the recipient's in-flight attempts; they are recorded as failed.
func (rs *RetryScheduler) Cancel(recipientID uuid.UUID) {
	rs.mu.Lock()
	cancels := rs.inflight[recipientID]
	delete(rs.inflight, recipientID)
	rs.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// InFlight reports the number of running attempts for a recipient.
func (rs *RetryScheduler) InFlight(recipientID uuid.UUID) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.inflight[recipientID])
}

// Wait blocks until every scan and attempt started so far has finished.
func (rs *RetryScheduler) Wait() {
	rs.wg.Wait()
}

var _ ports.RetryTrigger = (*RetryScheduler)(nil)
