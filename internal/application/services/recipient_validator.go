package services

import (
	"context"
	"fmt"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/domain/user"
)

type RecipientValidator struct {
	userRepository user.Repository
}

func NewRecipientValidator(userRepository user.Repository) ports.RecipientValidator {
	return &RecipientValidator{userRepository: userRepository}
}

// Validate classifies a raw recipient email. Malformed input and self-shares
// are classified, never returned as errors; only a failed directory lookup is.
func (rv *RecipientValidator) Validate(ctx context.Context, actorEmail, raw string) (share.Recipient, error) {
	r := share.Recipient{Normalized: user.NormalizeEmail(raw)}

	if !user.ValidEmail(r.Normalized) {
		r.Classification = share.RecipientInvalid
		r.Reason = share.ReasonInvalidEmail
		return r, nil
	}
	if r.Normalized == user.NormalizeEmail(actorEmail) {
		r.Classification = share.RecipientInvalid
		r.Reason = share.ReasonSelfShare
		return r, nil
	}

	u, err := rv.userRepository.FetchUserByEmail(ctx, r.Normalized)
	if err != nil {
		return r, fmt.Errorf("lookup recipient: %w", err)
	}
	if u == nil {
		r.Classification = share.RecipientNotRegistered
		r.Reason = share.ReasonNotRegistered
		return r, nil
	}

	r.Classification = share.RecipientValid
	r.UserID = u.UUID
	r.Name = u.Name

	return r, nil
}
