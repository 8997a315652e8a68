package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/share"
	domain "fileshare-api/internal/domain/user"
)

func TestShareController_Create(t *testing.T) {
	alice := uuid.New()
	fileID := uuid.New()
	bobShare := uuid.New()

	validBody := map[string]any{
		"fileId":      fileID.String(),
		"recipients":  []string{"bob@example.com", "ghost@example.com"},
		"permissions": []string{"VIEW"},
	}

	tests := []struct {
		name       string
		body       any
		shareFile  func(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error)
		wantStatus int
	}{
		{
			name: "partial success is still 200",
			body: validBody,
			shareFile: func(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error) {
				if actor.ID != alice || req.FileID != fileID || len(req.Recipients) != 2 {
					return nil, errors.New("unexpected request")
				}
				return share.NewBatchResult([]share.Result{
					{Email: "bob@example.com", ShareID: &bobShare, Success: true},
					{Email: "ghost@example.com", Error: "user not registered"},
				}), nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no recipients",
			body:       map[string]any{"fileId": fileID.String()},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad file id",
			body:       map[string]any{"fileId": "nope", "recipients": []string{"bob@example.com"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad group id",
			body:       map[string]any{"fileId": fileID.String(), "groupIds": []string{"nope"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "file not found",
			body: validBody,
			shareFile: func(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error) {
				return nil, file.ErrNotFound
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "not the owner",
			body: validBody,
			shareFile: func(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error) {
				return nil, fmt.Errorf("%w: not the file owner", share.ErrAccessDenied)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "bad permission",
			body: validBody,
			shareFile: func(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error) {
				return nil, fmt.Errorf("%w: %q", share.ErrInvalidPermission, "ADMIN")
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "store failure",
			body: validBody,
			shareFile: func(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error) {
				return nil, errors.New("db down")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, jwtService := newTestRouter(t)
			NewShareController(r, &FakeShareService{ShareFileFunc: tt.shareFile}, zap.NewNop(), jwtService)

			rr := doReq(t, r, http.MethodPost, RouteShares, tt.body, authHeader(t, testSecret, alice, "alice@example.com"))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			resp := decode(t, rr)
			switch tt.wantStatus {
			case http.StatusOK:
				assert.EqualValues(t, 1, resp["successfulShares"])
				assert.EqualValues(t, 1, resp["failedShares"])
				results := resp["results"].([]any)
				require.Len(t, results, 2)
				assert.Equal(t, bobShare.String(), results[0].(map[string]any)["shareId"])
				assert.Equal(t, "user not registered", results[1].(map[string]any)["error"])
			case http.StatusInternalServerError:
				assert.Equal(t, "failed to share a file", resp["error"])
			default:
				assert.NotEmpty(t, resp["error"])
			}
		})
	}
}

func TestShareController_RevokeAndDelete(t *testing.T) {
	alice := uuid.New()
	shareID := uuid.New()
	missing := uuid.New()
	now := time.Now()

	svc := &FakeShareService{
		RevokeShareFunc: func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*share.Share, error) {
			if id == missing {
				return nil, share.ErrNotFound
			}
			return &share.Share{UUID: id, CreatorID: actor.ID, Type: share.TypeUser, Revoked: true, RevokedAt: &now}, nil
		},
		DeleteSharesFunc: func(ctx context.Context, actor domain.Actor, ids []uuid.UUID) ([]share.DeleteResult, error) {
			out := make([]share.DeleteResult, len(ids))
			for i, id := range ids {
				out[i] = share.DeleteResult{ShareID: id, Success: id != missing}
				if id == missing {
					out[i].Error = share.ErrNotFound.Error()
				}
			}
			return out, nil
		},
	}

	r, jwtService := newTestRouter(t)
	NewShareController(r, svc, zap.NewNop(), jwtService)
	headers := authHeader(t, testSecret, alice, "alice@example.com")

	rr := doReq(t, r, http.MethodPost, RouteShares+"/"+shareID.String()+"/revoke", nil, headers)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, true, decode(t, rr)["revoked"])

	rr = doReq(t, r, http.MethodPost, RouteShares+"/"+missing.String()+"/revoke", nil, headers)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doReq(t, r, http.MethodPost, RouteShares+"/nope/revoke", nil, headers)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doReq(t, r, http.MethodDelete, RouteShares,
		map[string]any{"shareIds": []string{shareID.String(), missing.String()}}, headers)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	results := decode(t, rr)["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, true, results[0].(map[string]any)["success"])
	assert.Equal(t, "share not found", results[1].(map[string]any)["error"])

	rr = doReq(t, r, http.MethodDelete, RouteShares, map[string]any{"shareIds": []string{"nope"}}, headers)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShareController_Access(t *testing.T) {
	bob := uuid.New()
	shareID := uuid.New()

	tests := []struct {
		name       string
		body       any
		access     func(ctx context.Context, actor domain.Actor, id uuid.UUID, event share.AccessEvent, password string) (*share.AccessGrant, error)
		wantStatus int
	}{
		{
			name: "download grant",
			body: map[string]string{"event": "download", "password": "s3cret"},
			access: func(ctx context.Context, actor domain.Actor, id uuid.UUID, event share.AccessEvent, password string) (*share.AccessGrant, error) {
				if actor.ID != bob || id != shareID || event != share.AccessDownload || password != "s3cret" {
					return nil, errors.New("unexpected input")
				}
				return &share.AccessGrant{
					Share:       &share.Share{UUID: id, Type: share.TypeUser, RecipientID: &bob, AccessCount: 1, DownloadCount: 1},
					File:        &file.File{UUID: uuid.New(), FileName: "a.txt"},
					DownloadURL: "https://bucket.example.com/a.txt?sig=1",
				}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown event",
			body:       map[string]string{"event": "print"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "revoked",
			body: map[string]string{"event": "view"},
			access: func(ctx context.Context, actor domain.Actor, id uuid.UUID, event share.AccessEvent, password string) (*share.AccessGrant, error) {
				return nil, fmt.Errorf("%w: share revoked", share.ErrAccessDenied)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "unknown share",
			body: map[string]string{"event": "view"},
			access: func(ctx context.Context, actor domain.Actor, id uuid.UUID, event share.AccessEvent, password string) (*share.AccessGrant, error) {
				return nil, share.ErrNotFound
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, jwtService := newTestRouter(t)
			NewShareController(r, &FakeShareService{RecordAccessFunc: tt.access}, zap.NewNop(), jwtService)

			rr := doReq(t, r, http.MethodPost, RouteShares+"/"+shareID.String()+"/access", tt.body,
				authHeader(t, testSecret, bob, "bob@example.com"))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			resp := decode(t, rr)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "https://bucket.example.com/a.txt?sig=1", resp["downloadUrl"])
				assert.EqualValues(t, 1, resp["share"].(map[string]any)["downloadCount"])
				return
			}
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, resp["error"], "share revoked")
			}
		})
	}
}

func TestShareController_Lists(t *testing.T) {
	bob := uuid.New()
	received := share.Shares{{UUID: uuid.New(), Type: share.TypeUser, RecipientID: &bob, Permissions: []share.Permission{share.PermissionView}}}

	svc := &FakeShareService{
		ListReceivedFunc: func(ctx context.Context, actor domain.Actor, page int) (share.Shares, error) {
			return received, nil
		},
		ListSentFunc: func(ctx context.Context, actor domain.Actor, page int) (share.Shares, error) {
			return share.Shares{}, nil
		},
	}

	r, jwtService := newTestRouter(t)
	NewShareController(r, svc, zap.NewNop(), jwtService)
	headers := authHeader(t, testSecret, bob, "bob@example.com")

	rr := doReq(t, r, http.MethodGet, RouteSharesReceived, nil, headers)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	data := decode(t, rr)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, []any{"VIEW"}, data[0].(map[string]any)["permissions"])

	rr = doReq(t, r, http.MethodGet, RouteSharesSent, nil, headers)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode(t, rr)["data"])
}
