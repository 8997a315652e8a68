package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"fileshare-api/config"
	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/domain/user"
)

const (
	downloadURLTTL = 15 * time.Minute

	reasonCreateFailed      = "failed to create share"
	reasonNotQueued         = "notification not queued"
	reasonUnsupportedTarget = "unsupported share target"
)

type ShareService struct {
	fileRepository     file.Repository
	shareRepository    share.Repository
	deliveryRepository delivery.Repository
	validator          ports.RecipientValidator
	tracker            ports.DeliveryTracker
	emitter            ports.Emitter
	s3                 ports.S3Client
	cfg                config.Delivery
	logger             *zap.Logger
	mCounter           *prometheus.CounterVec
	now                func() time.Time
}

func NewShareService(
	fileRepository file.Repository,
	shareRepository share.Repository,
	deliveryRepository delivery.Repository,
	validator ports.RecipientValidator,
	tracker ports.DeliveryTracker,
	emitter ports.Emitter,
	s3 ports.S3Client,
	cfg config.Delivery,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.ShareService {
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}
	return &ShareService{
		fileRepository:     fileRepository,
		shareRepository:    shareRepository,
		deliveryRepository: deliveryRepository,
		validator:          validator,
		tracker:            tracker,
		emitter:            emitter,
		s3:                 s3,
		cfg:                cfg,
		logger:             logger,
		mCounter:           mCounter,
		now:                time.Now,
	}
}

// ShareFile fans one request out into independent per-recipient shares.
// Only request-level problems (bad input, unknown or foreign file) fail the
// whole call; everything else lands in that recipient's result.
func (ss *ShareService) ShareFile(ctx context.Context, actor user.Actor, req share.Request) (*share.BatchResult, error) {
	if len(req.Recipients) == 0 && len(req.GroupIDs) == 0 {
		return nil, share.ErrNoRecipients
	}
	perms, err := share.ParsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	if req.MaxAccessCount != nil && *req.MaxAccessCount < 1 {
		return nil, share.ErrInvalidAccessLimit
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(ss.now()) {
		return nil, share.ErrExpiryInPast
	}

	f, err := ss.fileRepository.FetchFile(ctx, req.FileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, file.ErrNotFound
	}
	if f.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: not the file owner", share.ErrAccessDenied)
	}

	var pwHash *string
	if req.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h := string(b)
		pwHash = &h
	}

	tmpl := share.Share{
		FileID:         f.UUID,
		CreatorID:      actor.ID,
		Permissions:    perms,
		PasswordHash:   pwHash,
		ExpiresAt:      req.ExpiresAt,
		MaxAccessCount: req.MaxAccessCount,
	}
	channels := delivery.ParseChannels(req.Channels)

	results := make([]share.Result, len(req.Recipients)+len(req.GroupIDs))
	g := new(errgroup.Group)
	g.SetLimit(ss.cfg.BatchConcurrency)
	for i, raw := range req.Recipients {
		g.Go(func() error {
			results[i] = ss.shareWithEmail(ctx, actor, f, tmpl, raw, channels)
			return nil
		})
	}
	for j, gid := range req.GroupIDs {
		idx := len(req.Recipients) + j
		g.Go(func() error {
			results[idx] = ss.shareWithTarget(ctx, actor, f, tmpl, share.GroupTarget{GroupID: gid}, channels)
			return nil
		})
	}
	_ = g.Wait()

	br := share.NewBatchResult(results)
	ss.mCounter.WithLabelValues("shares_created_total").Add(float64(br.SuccessfulShares))
	ss.mCounter.WithLabelValues("shares_failed_total").Add(float64(br.FailedShares))

	return br, nil
}

func (ss *ShareService) shareWithEmail(
	ctx context.Context,
	actor user.Actor,
	f *file.File,
	tmpl share.Share,
	raw string,
	channels []delivery.Channel,
) share.Result {
	r, err := ss.validator.Validate(ctx, actor.Email, raw)
	if err != nil {
		ss.logger.Error("recipient validation failed", zap.String("recipient", r.Normalized), zap.Error(err))
		return share.Result{Email: r.Normalized, Error: share.ReasonLookupFailed}
	}
	if !r.Valid() {
		return share.Result{Email: r.Normalized, Error: r.Reason}
	}

	return ss.shareWithTarget(ctx, actor, f, tmpl, r.Target(), channels)
}

func (ss *ShareService) shareWithTarget(
	ctx context.Context,
	actor user.Actor,
	f *file.File,
	tmpl share.Share,
	target share.Target,
	channels []delivery.Channel,
) share.Result {
	s := tmpl
	var res share.Result

	switch t := target.(type) {
	case share.UserTarget:
		recipientID := t.UserID
		s.Type = share.TypeUser
		s.RecipientID = &recipientID
		s.RecipientEmail = t.Email
		res.Email = t.Email
	case share.GroupTarget:
		// groups are stored as-is; expanding members is left to consumers
		groupID := t.GroupID
		s.Type = share.TypeGroup
		s.GroupID = &groupID
		res.GroupID = &groupID
	default:
		res.Error = reasonUnsupportedTarget
		return res
	}

	created, err := ss.shareRepository.CreateShare(ctx, &s)
	if err != nil {
		if errors.Is(err, share.ErrAlreadyShared) {
			res.Error = err.Error()
			return res
		}
		ss.logger.Error("CreateShare() error", zap.Stringer("file_id", f.UUID), zap.Error(err))
		res.Error = reasonCreateFailed
		return res
	}

	res.Success = true
	res.ShareID = &created.UUID

	if created.Type == share.TypeUser {
		ss.startDelivery(ctx, actor, f, created, channels)
	}

	return res
}

// startDelivery records the durable delivery row, registers the live status and
// pushes the first notification. None of it can fail the share itself.
func (ss *ShareService) startDelivery(
	ctx context.Context,
	actor user.Actor,
	f *file.File,
	s *share.Share,
	channels []delivery.Channel,
) {
	recipientID := *s.RecipientID

	expiresAt := ss.now().Add(ss.cfg.DefaultTTL)
	if s.ExpiresAt != nil {
		expiresAt = *s.ExpiresAt
	}
	if _, err := ss.deliveryRepository.CreateFileDelivery(ctx, &delivery.FileDelivery{
		FileID:      f.UUID,
		ShareID:     s.UUID,
		SenderID:    actor.ID,
		RecipientID: recipientID,
		ExpiresAt:   expiresAt,
	}); err != nil {
		ss.logger.Error("CreateFileDelivery() error", zap.Stringer("share_id", s.UUID), zap.Error(err))
	}

	deliveryID := ss.tracker.Track(delivery.TrackInput{
		ShareID:        s.UUID,
		SenderID:       actor.ID,
		RecipientID:    recipientID,
		RecipientEmail: s.RecipientEmail,
		MaxRetries:     ss.cfg.MaxRetries,
		Channels:       channels,
	})

	err := ss.emitter.Emit(EventFileShared, recipientID, FileSharedPayload{
		ShareID:     s.UUID,
		FileID:      f.UUID,
		FileName:    f.FileName,
		SenderID:    actor.ID,
		SenderEmail: actor.Email,
		Permissions: permissionStrings(s.Permissions),
		ExpiresAt:   s.ExpiresAt,
		DeliveryID:  &deliveryID,
	})
	if err != nil {
		ss.logger.Warn("share notification not queued", zap.Stringer("share_id", s.UUID), zap.Error(err))
		if err = ss.tracker.MarkAsFailed(deliveryID, reasonNotQueued); err != nil {
			ss.logger.Debug("delivery status not updated", zap.Stringer("delivery_id", deliveryID), zap.Error(err))
		}
		return
	}
	if err = ss.tracker.MarkAsSent(deliveryID); err != nil {
		ss.logger.Debug("delivery status not updated", zap.Stringer("delivery_id", deliveryID), zap.Error(err))
	}
}

// RevokeShare may be repeated; only the first call notifies the recipient.
func (ss *ShareService) RevokeShare(ctx context.Context, actor user.Actor, id uuid.UUID) (*share.Share, error) {
	s, err := ss.shareRepository.FetchShare(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, share.ErrNotFound
	}
	if s.CreatorID != actor.ID {
		return nil, fmt.Errorf("%w: not the share creator", share.ErrAccessDenied)
	}

	out, err := ss.shareRepository.RevokeShare(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.Revoked {
		ss.mCounter.WithLabelValues("shares_revoked_total").Inc()
		if out.RecipientID != nil {
			if err = ss.emitter.Emit(EventShareRevoked, *out.RecipientID, ShareRevokedPayload{
				ShareID: out.UUID,
				FileID:  out.FileID,
			}); err != nil {
				ss.logger.Warn("revoke notification not queued", zap.Stringer("share_id", id), zap.Error(err))
			}
		}
	}

	return out, nil
}

func (ss *ShareService) DeleteShares(ctx context.Context, actor user.Actor, ids []uuid.UUID) ([]share.DeleteResult, error) {
	if len(ids) == 0 {
		return nil, share.ErrNoShareIDs
	}

	out := make([]share.DeleteResult, len(ids))
	for i, id := range ids {
		out[i].ShareID = id
		_, err := ss.RevokeShare(ctx, actor, id)
		switch {
		case err == nil:
			out[i].Success = true
		case errors.Is(err, share.ErrNotFound), errors.Is(err, share.ErrAccessDenied):
			out[i].Error = err.Error()
		default:
			ss.logger.Error("RevokeShare() error", zap.Stringer("share_id", id), zap.Error(err))
			out[i].Error = "failed to delete share"
		}
	}

	return out, nil
}

// RecordAccess lets the recipient view or download through an active share.
// The repository repeats the activity check atomically with the increment.
func (ss *ShareService) RecordAccess(
	ctx context.Context,
	actor user.Actor,
	id uuid.UUID,
	event share.AccessEvent,
	password string,
) (*share.AccessGrant, error) {
	s, err := ss.shareRepository.FetchShare(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, share.ErrNotFound
	}
	if !s.IsRecipient(actor.ID) {
		return nil, fmt.Errorf("%w: not the share recipient", share.ErrAccessDenied)
	}
	if err = s.CheckActive(ss.now()); err != nil {
		return nil, err
	}
	if !s.Allows(event.RequiredPermission()) {
		return nil, fmt.Errorf("%w: %s not permitted", share.ErrAccessDenied, event)
	}
	if s.PasswordHash != nil {
		if bcrypt.CompareHashAndPassword([]byte(*s.PasswordHash), []byte(password)) != nil {
			return nil, fmt.Errorf("%w: wrong share password", share.ErrAccessDenied)
		}
	}

	updated, err := ss.shareRepository.RecordAccess(ctx, id, event)
	if err != nil {
		return nil, err
	}

	f, err := ss.fileRepository.FetchFile(ctx, updated.FileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, file.ErrNotFound
	}

	grant := &share.AccessGrant{Share: updated, File: f}
	if event == share.AccessDownload {
		grant.DownloadURL, err = ss.s3.PresignGet(ctx, f.StorageKey, downloadURLTTL)
		if err != nil {
			return nil, err
		}
	}

	ss.mCounter.WithLabelValues("share_access_" + string(event) + "_total").Inc()

	return grant, nil
}

func (ss *ShareService) ListReceived(ctx context.Context, actor user.Actor, page int) (share.Shares, error) {
	return ss.shareRepository.FetchReceivedShares(ctx, actor.ID, page)
}

func (ss *ShareService) ListSent(ctx context.Context, actor user.Actor, page int) (share.Shares, error) {
	return ss.shareRepository.FetchSentShares(ctx, actor.ID, page)
}

func permissionStrings(perms []share.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
