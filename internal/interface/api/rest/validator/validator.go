package validator

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/interface/api/rest/dto/auth"
	deliveryDto "fileshare-api/internal/interface/api/rest/dto/delivery"
	shareDto "fileshare-api/internal/interface/api/rest/dto/share"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt safe

	maxRecipients = 100
)

var ErrInvalidPage = errors.New("invalid page")

func ValidatePage(page string) (int, error) {
	if page == "" {
		return 1, nil
	}
	p, err := strconv.Atoi(page)
	if err != nil || p < 1 {
		return 0, ErrInvalidPage
	}
	return p, nil
}

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	errs := make(map[string]string)

	validateEmail(errs, r.Email)
	validatePassword(errs, r.Password)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateRegister(r auth.RegisterRequest) map[string]string {
	errs := make(map[string]string)

	validateEmail(errs, r.Email)
	validatePassword(errs, r.Password)

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs["name"] = "name is required"
	} else if l := utf8.RuneCountInString(name); l < 2 || l > 64 {
		errs["name"] = "name length must be 2-64 characters"
	} else if !isHumanName(name) {
		errs["name"] = "allowed characters: letters, space, '-', '''"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateShare checks the request shape only; recipients are classified one by one later.
func ValidateShare(r shareDto.CreateRequest) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(r.FileID) == "" {
		errs["fileId"] = "fileId is required"
	} else if ok, _ := IsUUID(r.FileID); !ok {
		errs["fileId"] = "fileId must be a valid UUID"
	}

	switch n := len(r.Recipients) + len(r.GroupIDs); {
	case n == 0:
		errs["recipients"] = "at least one recipient or group is required"
	case n > maxRecipients:
		errs["recipients"] = "at most " + strconv.Itoa(maxRecipients) + " recipients per request"
	}

	if r.MaxAccessCount != nil && *r.MaxAccessCount < 1 {
		errs["maxAccessCount"] = "maxAccessCount must be positive"
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(time.Now()) {
		errs["expiresAt"] = "expiresAt must be in the future"
	}
	if utf8.RuneCountInString(r.Password) > maxPasswordLen {
		errs["password"] = "password must be at most 72 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateAction(r deliveryDto.ActionRequest) map[string]string {
	errs := make(map[string]string)

	if r.Action == "" {
		errs["action"] = "action is required"
	} else if _, err := delivery.ParseAction(r.Action); err != nil {
		errs["action"] = "must be one of mark_delivered, mark_viewed, mark_downloaded, retry_delivery, track_delivery"
	}

	deliveryID := r.DeliveryID != nil && *r.DeliveryID != ""
	shareID := r.ShareID != nil && *r.ShareID != ""
	if !deliveryID && !shareID {
		errs["target"] = "deliveryId or shareId is required"
	}
	if deliveryID {
		if ok, _ := IsUUID(*r.DeliveryID); !ok {
			errs["deliveryId"] = "deliveryId must be a valid UUID"
		}
	}
	if shareID {
		if ok, _ := IsUUID(*r.ShareID); !ok {
			errs["shareId"] = "shareId must be a valid UUID"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateTimeRange parses optional RFC 3339 bounds; zero values mean "use the default".
func ValidateTimeRange(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var err error
	if from != "" {
		if f, err = time.Parse(time.RFC3339, from); err != nil {
			return f, t, errors.New("from must be RFC 3339")
		}
	}
	if to != "" {
		if t, err = time.Parse(time.RFC3339, to); err != nil {
			return f, t, errors.New("to must be RFC 3339")
		}
	}
	if !f.IsZero() && !t.IsZero() && !f.Before(t) {
		return f, t, errors.New("from must be before to")
	}
	return f, t, nil
}

func validateEmail(errs map[string]string, raw string) {
	email := user.NormalizeEmail(raw)
	if email == "" {
		errs["email"] = "email is required"
	} else if !user.ValidEmail(email) {
		errs["email"] = "invalid email format"
	}
}

// passwords are never trimmed
func validatePassword(errs map[string]string, password string) {
	if strings.TrimSpace(password) == "" {
		errs["password"] = "password is required"
	} else if l := utf8.RuneCountInString(password); l < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8-72 characters"
	}
}

func isHumanName(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' {
			continue
		}
		return false
	}
	return true
}
