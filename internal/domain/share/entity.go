package share

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	Permission  string
	Type        string
	AccessEvent string

	// Target is either a UserTarget or a GroupTarget.
	Target interface {
		isTarget()
	}
	UserTarget struct {
		UserID uuid.UUID
		Email  string
	}
	GroupTarget struct {
		GroupID uuid.UUID
	}

	Share struct {
		UUID      uuid.UUID
		FileID    uuid.UUID
		CreatorID uuid.UUID
		Type      Type

		RecipientID    *uuid.UUID
		RecipientEmail string
		GroupID        *uuid.UUID

		Permissions    []Permission
		PasswordHash   *string
		ExpiresAt      *time.Time
		MaxAccessCount *int

		AccessCount    int
		ViewCount      int
		DownloadCount  int
		LastAccessedAt *time.Time

		Revoked   bool
		RevokedAt *time.Time
		CreatedAt time.Time
	}
	Shares []*Share
)

const (
	PermissionView     Permission = "VIEW"
	PermissionDownload Permission = "DOWNLOAD"
	PermissionEdit     Permission = "EDIT"

	TypeUser  Type = "USER"
	TypeGroup Type = "GROUP"

	AccessView     AccessEvent = "view"
	AccessDownload AccessEvent = "download"
)

func (UserTarget) isTarget()  {}
func (GroupTarget) isTarget() {}

func ParsePermissions(raw []string) ([]Permission, error) {
	if len(raw) == 0 {
		return []Permission{PermissionView}, nil
	}

	out := make([]Permission, 0, len(raw))
	for _, r := range raw {
		p := Permission(strings.ToUpper(strings.TrimSpace(r)))
		switch p {
		case PermissionView, PermissionDownload, PermissionEdit:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidPermission, r)
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}

	return out, nil
}

func ParseAccessEvent(raw string) (AccessEvent, bool) {
	switch e := AccessEvent(strings.ToLower(strings.TrimSpace(raw))); e {
	case AccessView, AccessDownload:
		return e, true
	default:
		return "", false
	}
}

// Expired reports whether the share reached its expiry; a share expiring exactly now is expired.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

func (s *Share) LimitReached() bool {
	return s.MaxAccessCount != nil && s.AccessCount >= *s.MaxAccessCount
}

func (s *Share) Active(now time.Time) bool {
	return !s.Revoked && !s.Expired(now) && !s.LimitReached()
}

// CheckActive returns an ErrAccessDenied-wrapped reason when the share is inactive.
func (s *Share) CheckActive(now time.Time) error {
	switch {
	case s.Revoked:
		return fmt.Errorf("%w: share revoked", ErrAccessDenied)
	case s.Expired(now):
		return fmt.Errorf("%w: share expired", ErrAccessDenied)
	case s.LimitReached():
		return fmt.Errorf("%w: access limit reached", ErrAccessDenied)
	}
	return nil
}

func (s *Share) Allows(p Permission) bool {
	return slices.Contains(s.Permissions, p)
}

func (s *Share) IsRecipient(userID uuid.UUID) bool {
	return s.Type == TypeUser && s.RecipientID != nil && *s.RecipientID == userID
}

func (e AccessEvent) RequiredPermission() Permission {
	if e == AccessDownload {
		return PermissionDownload
	}
	return PermissionView
}
