package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	domain "fileshare-api/internal/domain/share"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/jwt"
	"fileshare-api/internal/interface/api/rest/dto/share"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

type ShareController struct {
	shareService ports.ShareService
	logger       *zap.Logger
}

func NewShareController(
	r *gin.Engine,
	shareService ports.ShareService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *ShareController {
	sc := &ShareController{
		shareService: shareService,
		logger:       logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RouteShares, auth, sc.CreateSharesHandler)
	r.DELETE(RouteShares, auth, sc.DeleteSharesHandler)
	r.GET(RouteSharesReceived, auth, sc.GetReceivedSharesHandler)
	r.GET(RouteSharesSent, auth, sc.GetSentSharesHandler)
	r.POST(RouteShareRevoke, auth, sc.RevokeShareHandler)
	r.POST(RouteShareAccess, auth, sc.AccessShareHandler)

	return sc
}

// CreateSharesHandler answers 200 even when some recipients failed; the
// per-recipient outcome is in the body.
func (sc *ShareController) CreateSharesHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req share.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	if errs := validator.ValidateShare(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	dReq, err := share.ToDomainRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	br, err := sc.shareService.ShareFile(c.Request.Context(), actor, dReq)
	if err != nil {
		writeError(c, sc.logger, "ShareFile()", "failed to share a file", err)
		return
	}

	c.JSON(http.StatusOK, share.ToBatchResponse(*br))
}

func (sc *ShareController) DeleteSharesHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req share.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	ids, err := share.ParseIDs(req.ShareIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	results, err := sc.shareService.DeleteShares(c.Request.Context(), actor, ids)
	if err != nil {
		writeError(c, sc.logger, "DeleteShares()", "failed to delete shares", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": share.ToDeleteResults(results)})
}

func (sc *ShareController) RevokeShareHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}
	ok, id := validator.IsUUID(c.Param("share_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "share_id must be a valid UUID"},
		)
		return
	}

	s, err := sc.shareService.RevokeShare(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, sc.logger, "RevokeShare()", "failed to revoke a share", err)
		return
	}

	c.JSON(http.StatusOK, share.ToResponseShare(*s))
}

func (sc *ShareController) AccessShareHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}
	ok, id := validator.IsUUID(c.Param("share_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "share_id must be a valid UUID"},
		)
		return
	}

	var req share.AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	event, ok := domain.ParseAccessEvent(req.Event)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": map[string]string{"event": "must be view or download"},
		})
		return
	}

	grant, err := sc.shareService.RecordAccess(c.Request.Context(), actor, id, event, req.Password)
	if err != nil {
		writeError(c, sc.logger, "RecordAccess()", "failed to access a share", err)
		return
	}

	c.JSON(http.StatusOK, share.ToAccessResponse(*grant))
}

func (sc *ShareController) GetReceivedSharesHandler(c *gin.Context) {
	sc.list(c, "ListReceived()", sc.shareService.ListReceived)
}

func (sc *ShareController) GetSentSharesHandler(c *gin.Context) {
	sc.list(c, "ListSent()", sc.shareService.ListSent)
}

func (sc *ShareController) list(c *gin.Context, op string, find func(ctx context.Context, actor user.Actor, page int) (domain.Shares, error)) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	shares, err := find(c.Request.Context(), actor, page)
	if err != nil {
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": "failed to get shares"},
		)
		sc.logger.Error(op+" error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, share.ResponseData{
		Data: share.ToResponseShares(shares),
	})
}
