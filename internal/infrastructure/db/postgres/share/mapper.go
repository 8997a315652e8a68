package share

import (
	domain "fileshare-api/internal/domain/share"
)

func fromDBModel(model *Share) *domain.Share {
	perms := make([]domain.Permission, len(model.Permissions))
	for i, p := range model.Permissions {
		perms[i] = domain.Permission(p)
	}

	var maxAccess *int
	if model.MaxAccessCount != nil {
		v := int(*model.MaxAccessCount)
		maxAccess = &v
	}

	var s = &domain.Share{
		UUID:      model.UUID,
		FileID:    model.FileID,
		CreatorID: model.CreatorID,
		Type:      domain.Type(model.ShareType),

		RecipientID:    model.RecipientID,
		RecipientEmail: model.RecipientEmail,
		GroupID:        model.GroupID,

		Permissions:    perms,
		PasswordHash:   model.PasswordHash,
		ExpiresAt:      model.ExpiresAt,
		MaxAccessCount: maxAccess,

		AccessCount:    int(model.AccessCount),
		ViewCount:      int(model.ViewCount),
		DownloadCount:  int(model.DownloadCount),
		LastAccessedAt: model.LastAccessedAt,

		Revoked:   model.Revoked,
		RevokedAt: model.RevokedAt,
		CreatedAt: model.CreatedAt,
	}

	return s
}

func fromDBModels(models *Shares) domain.Shares {
	ss := make(domain.Shares, len(*models))
	for idx, s := range *models {
		ss[idx] = fromDBModel(s)
	}

	return ss
}

func toDBPermissions(perms []domain.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func toDBMaxAccess(v *int) *int32 {
	if v == nil {
		return nil
	}
	m := int32(*v)
	return &m
}
