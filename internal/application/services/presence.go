package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
)

type PresenceService struct {
	store    ports.PresenceStore
	retries  ports.RetryTrigger
	logger   *zap.Logger
	mCounter *prometheus.CounterVec
}

func NewPresenceService(
	store ports.PresenceStore,
	retries ports.RetryTrigger,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.PresenceService {
	return &PresenceService{
		store:    store,
		retries:  retries,
		logger:   logger,
		mCounter: mCounter,
	}
}

// Online doubles as the heartbeat. Only the offline -> online transition
// starts a retry scan.
func (ps *PresenceService) Online(ctx context.Context, userID uuid.UUID) (bool, error) {
	transitioned, err := ps.store.MarkOnline(ctx, userID)
	if err != nil {
		return false, err
	}
	if transitioned {
		ps.mCounter.WithLabelValues("presence_online_total").Inc()
		ps.logger.Debug("user online", zap.Stringer("user_id", userID))
		ps.retries.Trigger(userID)
	}
	return transitioned, nil
}

// Offline always cancels in-flight retries, even when the key had already lapsed.
func (ps *PresenceService) Offline(ctx context.Context, userID uuid.UUID) (bool, error) {
	ps.retries.Cancel(userID)

	transitioned, err := ps.store.MarkOffline(ctx, userID)
	if err != nil {
		return false, err
	}
	if transitioned {
		ps.logger.Debug("user offline", zap.Stringer("user_id", userID))
	}
	return transitioned, nil
}
