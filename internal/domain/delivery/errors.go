package delivery

import "errors"

var (
	ErrNotFound          = errors.New("delivery not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidTransition = errors.New("invalid delivery status transition")
	ErrNotFailed         = errors.New("delivery is not in failed state")
	ErrRetriesExhausted  = errors.New("delivery retry limit reached")
	ErrConcurrentUpdate  = errors.New("delivery was updated concurrently")
)
