package delivery

import (
	"errors"

	"github.com/google/uuid"
)

type Action string

const (
	ActionMarkDelivered  Action = "mark_delivered"
	ActionMarkViewed     Action = "mark_viewed"
	ActionMarkDownloaded Action = "mark_downloaded"
	ActionRetry          Action = "retry_delivery"
	ActionTrack          Action = "track_delivery"
)

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrMissingTarget = errors.New("deliveryId or shareId is required")
	ErrMissingEmail  = errors.New("recipientEmail is required for group shares")
	ErrBadRecipient  = errors.New("invalid recipient")
)

type (
	ActionRequest struct {
		Action         Action
		DeliveryID     *uuid.UUID
		ShareID        *uuid.UUID
		RecipientEmail string
		Channels       []string
	}

	ActionResult struct {
		Success    bool
		Message    string
		DeliveryID uuid.UUID
	}

	// ShareStatus joins the live tracker view with the durable rows of one share.
	ShareStatus struct {
		ShareID    uuid.UUID
		Records    Records
		Deliveries FileDeliveries
	}
)

func ParseAction(raw string) (Action, error) {
	switch a := Action(raw); a {
	case ActionMarkDelivered, ActionMarkViewed, ActionMarkDownloaded, ActionRetry, ActionTrack:
		return a, nil
	default:
		return "", ErrInvalidAction
	}
}

// ForRecipient reports whether only the share recipient may perform the action.
func (a Action) ForRecipient() bool {
	switch a {
	case ActionMarkDelivered, ActionMarkViewed, ActionMarkDownloaded:
		return true
	}
	return false
}

func (a Action) Target() Status {
	switch a {
	case ActionMarkDelivered:
		return StatusDelivered
	case ActionMarkViewed:
		return StatusViewed
	case ActionMarkDownloaded:
		return StatusDownloaded
	}
	return ""
}
