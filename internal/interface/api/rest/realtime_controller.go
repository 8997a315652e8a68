package rest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/infrastructure/jwt"
	"fileshare-api/internal/interface/api/rest/middleware"
)

const (
	offlineTimeout   = 5 * time.Second
	defaultHeartbeat = 30 * time.Second
)

type presenceRequest struct {
	Status string `json:"status"`
}

type RealtimeController struct {
	hub       ports.RealtimeHub
	presence  ports.PresenceService
	heartbeat time.Duration
	logger    *zap.Logger
}

// NewRealtimeController refreshes presence every heartbeat while a stream is
// open; it should stay well below the presence TTL.
func NewRealtimeController(
	r *gin.Engine,
	hub ports.RealtimeHub,
	presence ports.PresenceService,
	heartbeat time.Duration,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *RealtimeController {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	rc := &RealtimeController{
		hub:       hub,
		presence:  presence,
		heartbeat: heartbeat,
		logger:    logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RoutePresence, auth, rc.PresenceHandler)
	r.GET(RouteEvents, auth, rc.EventsHandler)

	return rc
}

func (rc *RealtimeController) PresenceHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req presenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var (
		transitioned bool
		err          error
	)
	switch req.Status {
	case "online":
		transitioned, err = rc.presence.Online(c.Request.Context(), actor.ID)
	case "offline":
		transitioned, err = rc.presence.Offline(c.Request.Context(), actor.ID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": map[string]string{"status": "must be online or offline"},
		})
		return
	}
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to update presence"},
		)
		rc.logger.Error("presence update error", zap.String("status", req.Status), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status, "changed": transitioned})
}

// EventsHandler streams the caller's notifications as server-sent events.
// The subscription is registered before the user is marked online so the
// retries triggered by that transition find a live listener.
func (rc *RealtimeController) EventsHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}
	ctx := c.Request.Context()

	sub := rc.hub.Subscribe(actor.ID)
	defer func() {
		if !rc.hub.Unsubscribe(sub) {
			return
		}
		offCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), offlineTimeout)
		defer cancel()
		if _, err := rc.presence.Offline(offCtx, actor.ID); err != nil {
			rc.logger.Warn("mark offline failed", zap.Stringer("user_id", actor.ID), zap.Error(err))
		}
	}()

	if _, err := rc.presence.Online(ctx, actor.ID); err != nil {
		rc.logger.Warn("mark online failed", zap.Stringer("user_id", actor.ID), zap.Error(err))
	}

	ticker := time.NewTicker(rc.heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, open := <-sub.C():
			if !open {
				return false
			}
			c.SSEvent(msg.Name, msg.Data)
			return true
		case now := <-ticker.C:
			if _, err := rc.presence.Online(ctx, actor.ID); err != nil {
				rc.logger.Debug("presence heartbeat failed", zap.Stringer("user_id", actor.ID), zap.Error(err))
			}
			c.SSEvent("ping", now.UTC().Format(time.RFC3339))
			return true
		}
	})
}
