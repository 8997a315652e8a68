package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/infrastructure/jwt"
	"fileshare-api/internal/interface/api/rest/dto/delivery"
	"fileshare-api/internal/interface/api/rest/middleware"
	"fileshare-api/internal/interface/api/rest/validator"
)

type DeliveryController struct {
	deliveryService ports.DeliveryService
	logger          *zap.Logger
}

func NewDeliveryController(
	r *gin.Engine,
	deliveryService ports.DeliveryService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *DeliveryController {
	dc := &DeliveryController{
		deliveryService: deliveryService,
		logger:          logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RouteDeliveryActions, auth, dc.ActionHandler)
	r.GET(RouteDeliveriesStatus, auth, dc.StatusHandler)
	r.GET(RouteUserDeliveries, auth, dc.GetUserDeliveriesHandler)

	return dc
}

func (dc *DeliveryController) ActionHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req delivery.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	if errs := validator.ValidateAction(req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return
	}

	dReq, err := delivery.ToDomainAction(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	res, err := dc.deliveryService.HandleAction(c.Request.Context(), actor, dReq)
	if err != nil {
		writeError(c, dc.logger, "HandleAction()", "failed to handle delivery action", err)
		return
	}

	c.JSON(http.StatusOK, delivery.ToActionResponse(*res))
}

// StatusHandler returns one share's deliveries when share_id is given,
// otherwise analytics over [from, to) for the caller's own shares.
func (dc *DeliveryController) StatusHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}

	if raw := c.Query("share_id"); raw != "" {
		ok, shareID := validator.IsUUID(raw)
		if !ok {
			c.JSON(
				http.StatusBadRequest,
				gin.H{"error": "share_id must be a valid UUID"},
			)
			return
		}

		st, err := dc.deliveryService.ShareStatus(c.Request.Context(), actor, shareID)
		if err != nil {
			writeError(c, dc.logger, "ShareStatus()", "failed to get delivery status", err)
			return
		}
		c.JSON(http.StatusOK, delivery.ToStatusResponse(*st))
		return
	}

	from, to, err := validator.ValidateTimeRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return
	}

	a := dc.deliveryService.Analytics(c.Request.Context(), actor, from, to)
	c.JSON(http.StatusOK, delivery.ToAnalyticsResponse(a))
}

func (dc *DeliveryController) GetUserDeliveriesHandler(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		unauthorized(c)
		return
	}
	ok, userID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "user_id must be a valid UUID"},
		)
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

	rows, err := dc.deliveryService.RecipientDeliveries(c.Request.Context(), actor, userID, page)
	if err != nil {
		writeError(c, dc.logger, "RecipientDeliveries()", "failed to get deliveries", err)
		return
	}

	c.JSON(http.StatusOK, delivery.FileDeliveriesData{
		Data: delivery.ToResponseFileDeliveries(rows),
	})
}
