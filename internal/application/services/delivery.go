package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/domain/user"
)

const defaultAnalyticsWindow = 24 * time.Hour

type DeliveryService struct {
	shareRepository    share.Repository
	deliveryRepository delivery.Repository
	validator          ports.RecipientValidator
	tracker            ports.DeliveryTracker
	emitter            ports.Emitter
	maxRetries         int
	logger             *zap.Logger
	mCounter           *prometheus.CounterVec
	now                func() time.Time
}

func NewDeliveryService(
	shareRepository share.Repository,
	deliveryRepository delivery.Repository,
	validator ports.RecipientValidator,
	tracker ports.DeliveryTracker,
	emitter ports.Emitter,
	maxRetries int,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.DeliveryService {
	return &DeliveryService{
		shareRepository:    shareRepository,
		deliveryRepository: deliveryRepository,
		validator:          validator,
		tracker:            tracker,
		emitter:            emitter,
		maxRetries:         maxRetries,
		logger:             logger,
		mCounter:           mCounter,
		now:                time.Now,
	}
}

func (ds *DeliveryService) HandleAction(
	ctx context.Context,
	actor user.Actor,
	req delivery.ActionRequest,
) (*delivery.ActionResult, error) {
	if _, err := delivery.ParseAction(string(req.Action)); err != nil {
		return nil, err
	}
	if req.DeliveryID == nil && req.ShareID == nil {
		return nil, delivery.ErrMissingTarget
	}

	var (
		rec *delivery.Record
		s   *share.Share
		err error
	)
	if req.DeliveryID != nil {
		r, ok := ds.tracker.Get(*req.DeliveryID)
		if !ok {
			return nil, delivery.ErrNotFound
		}
		rec = &r
		s, err = ds.fetchShare(ctx, r.ShareID)
	} else {
		s, err = ds.fetchShare(ctx, *req.ShareID)
	}
	if err != nil {
		return nil, err
	}

	var res *delivery.ActionResult
	switch {
	case req.Action.ForRecipient():
		res, err = ds.mark(ctx, actor, s, rec, req.Action)
	case req.Action == delivery.ActionRetry:
		res, err = ds.retry(ctx, actor, s, rec, req.RecipientEmail)
	case req.Action == delivery.ActionTrack:
		res, err = ds.track(ctx, actor, s, req)
	}
	if err != nil {
		return nil, err
	}

	ds.mCounter.WithLabelValues("delivery_action_" + string(req.Action) + "_total").Inc()

	return res, nil
}

func (ds *DeliveryService) fetchShare(ctx context.Context, id uuid.UUID) (*share.Share, error) {
	s, err := ds.shareRepository.FetchShare(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, share.ErrNotFound
	}
	return s, nil
}

// mark applies a recipient-side transition; only the share recipient may do it.
func (ds *DeliveryService) mark(
	ctx context.Context,
	actor user.Actor,
	s *share.Share,
	rec *delivery.Record,
	action delivery.Action,
) (*delivery.ActionResult, error) {
	if !s.IsRecipient(actor.ID) || (rec != nil && rec.RecipientID != actor.ID) {
		return nil, fmt.Errorf("%w: not the delivery recipient", delivery.ErrAccessDenied)
	}
	if rec == nil {
		latest, err := ds.latest(s.UUID, actor.ID)
		if err != nil {
			return nil, err
		}
		rec = latest
	}

	var err error
	switch action {
	case delivery.ActionMarkDelivered:
		err = ds.tracker.MarkAsDelivered(rec.ID)
	case delivery.ActionMarkViewed:
		err = ds.tracker.MarkAsViewed(rec.ID)
	case delivery.ActionMarkDownloaded:
		err = ds.tracker.MarkAsDownloaded(rec.ID)
	}
	if err != nil {
		return nil, err
	}

	if action == delivery.ActionMarkDelivered {
		ds.completeDurable(ctx, s.UUID, actor.ID)
	}

	if err = ds.emitter.Emit(EventDeliveryStatus, s.CreatorID, DeliveryStatusPayload{
		DeliveryID:  rec.ID,
		ShareID:     s.UUID,
		RecipientID: actor.ID,
		Status:      string(action.Target()),
	}); err != nil {
		ds.logger.Debug("status notification not queued", zap.Stringer("delivery_id", rec.ID), zap.Error(err))
	}

	return &delivery.ActionResult{
		Success:    true,
		Message:    fmt.Sprintf("delivery marked as %s", action.Target()),
		DeliveryID: rec.ID,
	}, nil
}

// completeDurable closes the presence retry rows once the recipient confirmed delivery.
func (ds *DeliveryService) completeDurable(ctx context.Context, shareID, recipientID uuid.UUID) {
	rows, err := ds.deliveryRepository.FetchByShare(ctx, shareID)
	if err != nil {
		ds.logger.Error("FetchByShare() error", zap.Stringer("share_id", shareID), zap.Error(err))
		return
	}
	for _, fd := range rows {
		if fd.RecipientID != recipientID || fd.Status == delivery.FileDeliveryDelivered {
			continue
		}
		if _, err = ds.deliveryRepository.MarkDelivered(ctx, fd.UUID); err != nil {
			ds.logger.Error("MarkDelivered() error", zap.Stringer("file_delivery_id", fd.UUID), zap.Error(err))
		}
	}
}

func (ds *DeliveryService) retry(
	ctx context.Context,
	actor user.Actor,
	s *share.Share,
	rec *delivery.Record,
	recipientEmail string,
) (*delivery.ActionResult, error) {
	if s.CreatorID != actor.ID {
		return nil, fmt.Errorf("%w: not the share creator", delivery.ErrAccessDenied)
	}
	if rec == nil {
		recipientID, _, err := ds.resolveRecipient(ctx, actor, s, recipientEmail)
		if err != nil {
			return nil, err
		}
		if rec, err = ds.latest(s.UUID, recipientID); err != nil {
			return nil, err
		}
	}

	ok, err := ds.tracker.RetryDelivery(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	res := &delivery.ActionResult{Success: ok, DeliveryID: rec.ID, Message: "delivery retried"}
	if !ok {
		res.Message = "retry attempted, notification failed again"
	}
	return res, nil
}

func (ds *DeliveryService) track(
	ctx context.Context,
	actor user.Actor,
	s *share.Share,
	req delivery.ActionRequest,
) (*delivery.ActionResult, error) {
	if s.CreatorID != actor.ID {
		return nil, fmt.Errorf("%w: not the share creator", delivery.ErrAccessDenied)
	}
	if err := s.CheckActive(ds.now()); err != nil {
		return nil, err
	}

	recipientID, email, err := ds.resolveRecipient(ctx, actor, s, req.RecipientEmail)
	if err != nil {
		return nil, err
	}

	id := ds.tracker.Track(delivery.TrackInput{
		ShareID:        s.UUID,
		SenderID:       s.CreatorID,
		RecipientID:    recipientID,
		RecipientEmail: email,
		MaxRetries:     ds.maxRetries,
		Channels:       delivery.ParseChannels(req.Channels),
	})

	return &delivery.ActionResult{Success: true, Message: "delivery tracked", DeliveryID: id}, nil
}

// resolveRecipient takes the recipient from a user share, or from the
// supplied email for a group share.
func (ds *DeliveryService) resolveRecipient(
	ctx context.Context,
	actor user.Actor,
	s *share.Share,
	recipientEmail string,
) (uuid.UUID, string, error) {
	if s.Type == share.TypeUser && s.RecipientID != nil {
		return *s.RecipientID, s.RecipientEmail, nil
	}
	if recipientEmail == "" {
		return uuid.Nil, "", delivery.ErrMissingEmail
	}

	r, err := ds.validator.Validate(ctx, actor.Email, recipientEmail)
	if err != nil {
		return uuid.Nil, "", err
	}
	if !r.Valid() {
		return uuid.Nil, "", fmt.Errorf("%w: %s", delivery.ErrBadRecipient, r.Reason)
	}
	return r.UserID, r.Normalized, nil
}

// latest picks the newest tracked record of a share for one recipient.
func (ds *DeliveryService) latest(shareID, recipientID uuid.UUID) (*delivery.Record, error) {
	r, ok := ds.tracker.Latest(shareID, recipientID)
	if !ok {
		return nil, delivery.ErrNotFound
	}
	return &r, nil
}

func (ds *DeliveryService) ShareStatus(ctx context.Context, actor user.Actor, shareID uuid.UUID) (*delivery.ShareStatus, error) {
	s, err := ds.fetchShare(ctx, shareID)
	if err != nil {
		return nil, err
	}
	isCreator := s.CreatorID == actor.ID
	if !isCreator && !s.IsRecipient(actor.ID) {
		return nil, fmt.Errorf("%w: not a party to this share", delivery.ErrAccessDenied)
	}

	rows, err := ds.deliveryRepository.FetchByShare(ctx, shareID)
	if err != nil {
		return nil, err
	}

	st := &delivery.ShareStatus{ShareID: shareID, Deliveries: rows}
	for _, r := range ds.tracker.ByShare(shareID) {
		if isCreator || r.RecipientID == actor.ID {
			st.Records = append(st.Records, r)
		}
	}

	return st, nil
}

// Analytics covers the caller's own shares and defaults to the last 24h ending now.
func (ds *DeliveryService) Analytics(_ context.Context, actor user.Actor, from, to time.Time) delivery.Analytics {
	if to.IsZero() {
		to = ds.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultAnalyticsWindow)
	}
	return ds.tracker.SenderAnalytics(actor.ID, from, to)
}

// RecipientDeliveries lists durable delivery rows; users only see their own.
func (ds *DeliveryService) RecipientDeliveries(
	ctx context.Context,
	actor user.Actor,
	recipientID uuid.UUID,
	page int,
) (delivery.FileDeliveries, error) {
	if actor.ID == uuid.Nil || actor.ID != recipientID {
		return nil, delivery.ErrAccessDenied
	}
	return ds.deliveryRepository.FetchByRecipient(ctx, recipientID, page)
}
