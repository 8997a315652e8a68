package share

import "errors"

var (
	ErrNotFound          = errors.New("share not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrAlreadyShared     = errors.New("file already shared with this user")
	ErrInvalidPermission = errors.New("invalid permission")

	// request-level validation
	ErrNoRecipients       = errors.New("at least one recipient is required")
	ErrInvalidAccessLimit = errors.New("maxAccessCount must be positive")
	ErrExpiryInPast       = errors.New("expiresAt must be in the future")
	ErrNoShareIDs         = errors.New("at least one share id is required")
)
