package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/services"
	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/domain/user"
)

// statusFor maps domain errors to HTTP; anything unknown is an infrastructure failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, share.ErrNoRecipients),
		errors.Is(err, share.ErrInvalidPermission),
		errors.Is(err, share.ErrInvalidAccessLimit),
		errors.Is(err, share.ErrExpiryInPast),
		errors.Is(err, share.ErrNoShareIDs),
		errors.Is(err, delivery.ErrInvalidAction),
		errors.Is(err, delivery.ErrMissingTarget),
		errors.Is(err, delivery.ErrMissingEmail),
		errors.Is(err, delivery.ErrBadRecipient):
		return http.StatusBadRequest
	case errors.Is(err, file.ErrNotFound),
		errors.Is(err, share.ErrNotFound),
		errors.Is(err, delivery.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, share.ErrAccessDenied),
		errors.Is(err, delivery.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, share.ErrAlreadyShared),
		errors.Is(err, user.ErrEmailAlreadyExists),
		errors.Is(err, delivery.ErrInvalidTransition),
		errors.Is(err, delivery.ErrNotFailed),
		errors.Is(err, delivery.ErrRetriesExhausted),
		errors.Is(err, delivery.ErrConcurrentUpdate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Internal errors are logged and
// replaced by fallback so nothing from the store leaks to the client.
func writeError(c *gin.Context, logger *zap.Logger, op, fallback string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error(op+" error", zap.Error(err))
		c.JSON(code, gin.H{"error": fallback})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
}
