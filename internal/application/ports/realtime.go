package ports

import (
	"github.com/google/uuid"

	"fileshare-api/internal/infrastructure/realtime"
)

type RealtimeHub interface {
	Subscribe(userID uuid.UUID) *realtime.Subscription
	Unsubscribe(sub *realtime.Subscription) bool
	Send(userID uuid.UUID, msg realtime.Message) int
	Connected(userID uuid.UUID) bool
}
