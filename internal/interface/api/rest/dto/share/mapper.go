package share

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fileshare-api/internal/domain/share"
	"fileshare-api/internal/interface/api/rest/dto/file"
)

func ToDomainRequest(req CreateRequest) (share.Request, error) {
	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		return share.Request{}, errors.New("fileId must be a valid UUID")
	}
	groupIDs, err := ParseIDs(req.GroupIDs)
	if err != nil {
		return share.Request{}, fmt.Errorf("groupIds: %w", err)
	}

	return share.Request{
		FileID:         fileID,
		Recipients:     req.Recipients,
		GroupIDs:       groupIDs,
		Permissions:    req.Permissions,
		ExpiresAt:      req.ExpiresAt,
		Password:       req.Password,
		MaxAccessCount: req.MaxAccessCount,
		Channels:       req.Channels,
	}, nil
}

func ParseIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid UUID", r)
		}
		out = append(out, id)
	}
	return out, nil
}

func ToBatchResponse(br share.BatchResult) BatchResponse {
	out := BatchResponse{
		SuccessfulShares: br.SuccessfulShares,
		FailedShares:     br.FailedShares,
		Results:          make([]Result, len(br.Results)),
	}
	for i, r := range br.Results {
		out.Results[i] = Result{
			Email:   r.Email,
			GroupID: r.GroupID,
			ShareID: r.ShareID,
			Success: r.Success,
			Error:   r.Error,
		}
	}

	return out
}

func ToDeleteResults(rs []share.DeleteResult) []DeleteResult {
	out := make([]DeleteResult, len(rs))
	for i, r := range rs {
		out[i] = DeleteResult{ShareID: r.ShareID, Success: r.Success, Error: r.Error}
	}
	return out
}

func ToResponseShare(s share.Share) Share {
	perms := make([]string, len(s.Permissions))
	for i, p := range s.Permissions {
		perms[i] = string(p)
	}

	return Share{
		UUID:           s.UUID,
		FileID:         s.FileID,
		CreatorID:      s.CreatorID,
		Type:           string(s.Type),
		RecipientID:    s.RecipientID,
		RecipientEmail: s.RecipientEmail,
		GroupID:        s.GroupID,
		Permissions:    perms,
		HasPassword:    s.PasswordHash != nil,
		ExpiresAt:      s.ExpiresAt,
		MaxAccessCount: s.MaxAccessCount,
		AccessCount:    s.AccessCount,
		ViewCount:      s.ViewCount,
		DownloadCount:  s.DownloadCount,
		LastAccessedAt: s.LastAccessedAt,
		Revoked:        s.Revoked,
		RevokedAt:      s.RevokedAt,
		CreatedAt:      s.CreatedAt,
	}
}

func ToResponseShares(ss share.Shares) Shares {
	out := make(Shares, len(ss))
	for i, s := range ss {
		out[i] = ToResponseShare(*s)
	}
	return out
}

func ToAccessResponse(g share.AccessGrant) AccessResponse {
	return AccessResponse{
		Share:       ToResponseShare(*g.Share),
		File:        file.ToResponseFile(*g.File),
		DownloadURL: g.DownloadURL,
	}
}
