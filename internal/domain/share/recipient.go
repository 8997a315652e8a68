package share

import "github.com/google/uuid"

type Classification string

const (
	RecipientValid         Classification = "valid"
	RecipientNotRegistered Classification = "not-registered"
	RecipientInvalid       Classification = "invalid"

	ReasonInvalidEmail  = "invalid email format"
	ReasonSelfShare     = "cannot share with yourself"
	ReasonNotRegistered = "user not registered"
	ReasonLookupFailed  = "failed to validate recipient"
)

// Recipient is the outcome of checking one raw recipient email against the user directory.
type Recipient struct {
	Normalized     string
	Classification Classification
	Reason         string
	UserID         uuid.UUID
	Name           string
}

func (r Recipient) Valid() bool { return r.Classification == RecipientValid }

func (r Recipient) Target() UserTarget {
	return UserTarget{UserID: r.UserID, Email: r.Normalized}
}
