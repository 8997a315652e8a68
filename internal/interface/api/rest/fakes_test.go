package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fileshare-api/internal/domain/delivery"
	"fileshare-api/internal/domain/file"
	"fileshare-api/internal/domain/share"
	domain "fileshare-api/internal/domain/user"
	jwtSvc "fileshare-api/internal/infrastructure/jwt"
)

const testSecret = "test-secret"

type FakeUserService struct {
	FindUserByIDFunc func(ctx context.Context, id domain.UUID) (*domain.User, error)
	FindByEmailFunc  func(ctx context.Context, email string) (*domain.User, error)
	RegisterFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
}

func (f *FakeUserService) FindUserByID(ctx context.Context, id domain.UUID) (*domain.User, error) {
	if f.FindUserByIDFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindUserByIDFunc(ctx, id)
}
func (f *FakeUserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.FindByEmailFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindByEmailFunc(ctx, email)
}
func (f *FakeUserService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if f.RegisterFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RegisterFunc(ctx, email, password, name)
}

type fakeAuthService struct {
	GenerateTokenFunc func(u *domain.User, password string) (string, error)
}

func (f *fakeAuthService) GenerateToken(u *domain.User, password string) (string, error) {
	if f.GenerateTokenFunc == nil {
		return "", errors.New("not used")
	}
	return f.GenerateTokenFunc(u, password)
}

type FakeFileService struct {
	UploadFunc            func(ctx context.Context, actor domain.Actor, in *multipart.FileHeader, opts file.UploadOptions) (*file.File, error)
	FindOwnFilesFunc      func(ctx context.Context, actor domain.Actor, page int) (file.Files, error)
	FindReceivedFilesFunc func(ctx context.Context, actor domain.Actor, page int) (file.Files, error)
}

func (f *FakeFileService) Upload(ctx context.Context, actor domain.Actor, in *multipart.FileHeader, opts file.UploadOptions) (*file.File, error) {
	if f.UploadFunc == nil {
		return nil, errors.New("not used")
	}
	return f.UploadFunc(ctx, actor, in, opts)
}
func (f *FakeFileService) FindOwnFiles(ctx context.Context, actor domain.Actor, page int) (file.Files, error) {
	if f.FindOwnFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindOwnFilesFunc(ctx, actor, page)
}
func (f *FakeFileService) FindReceivedFiles(ctx context.Context, actor domain.Actor, page int) (file.Files, error) {
	if f.FindReceivedFilesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.FindReceivedFilesFunc(ctx, actor, page)
}

type FakeShareService struct {
	ShareFileFunc    func(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error)
	RevokeShareFunc  func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*share.Share, error)
	DeleteSharesFunc func(ctx context.Context, actor domain.Actor, ids []uuid.UUID) ([]share.DeleteResult, error)
	RecordAccessFunc func(ctx context.Context, actor domain.Actor, id uuid.UUID, event share.AccessEvent, password string) (*share.AccessGrant, error)
	ListReceivedFunc func(ctx context.Context, actor domain.Actor, page int) (share.Shares, error)
	ListSentFunc     func(ctx context.Context, actor domain.Actor, page int) (share.Shares, error)
}

func (f *FakeShareService) ShareFile(ctx context.Context, actor domain.Actor, req share.Request) (*share.BatchResult, error) {
	if f.ShareFileFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ShareFileFunc(ctx, actor, req)
}
func (f *FakeShareService) RevokeShare(ctx context.Context, actor domain.Actor, id uuid.UUID) (*share.Share, error) {
	if f.RevokeShareFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RevokeShareFunc(ctx, actor, id)
}
func (f *FakeShareService) DeleteShares(ctx context.Context, actor domain.Actor, ids []uuid.UUID) ([]share.DeleteResult, error) {
	if f.DeleteSharesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.DeleteSharesFunc(ctx, actor, ids)
}
func (f *FakeShareService) RecordAccess(ctx context.Context, actor domain.Actor, id uuid.UUID, event share.AccessEvent, password string) (*share.AccessGrant, error) {
	if f.RecordAccessFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RecordAccessFunc(ctx, actor, id, event, password)
}
func (f *FakeShareService) ListReceived(ctx context.Context, actor domain.Actor, page int) (share.Shares, error) {
	if f.ListReceivedFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListReceivedFunc(ctx, actor, page)
}
func (f *FakeShareService) ListSent(ctx context.Context, actor domain.Actor, page int) (share.Shares, error) {
	if f.ListSentFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ListSentFunc(ctx, actor, page)
}

type FakeDeliveryService struct {
	HandleActionFunc        func(ctx context.Context, actor domain.Actor, req delivery.ActionRequest) (*delivery.ActionResult, error)
	ShareStatusFunc         func(ctx context.Context, actor domain.Actor, shareID uuid.UUID) (*delivery.ShareStatus, error)
	AnalyticsFunc           func(ctx context.Context, actor domain.Actor, from, to time.Time) delivery.Analytics
	RecipientDeliveriesFunc func(ctx context.Context, actor domain.Actor, recipientID uuid.UUID, page int) (delivery.FileDeliveries, error)
}

func (f *FakeDeliveryService) HandleAction(ctx context.Context, actor domain.Actor, req delivery.ActionRequest) (*delivery.ActionResult, error) {
	if f.HandleActionFunc == nil {
		return nil, errors.New("not used")
	}
	return f.HandleActionFunc(ctx, actor, req)
}
func (f *FakeDeliveryService) ShareStatus(ctx context.Context, actor domain.Actor, shareID uuid.UUID) (*delivery.ShareStatus, error) {
	if f.ShareStatusFunc == nil {
		return nil, errors.New("not used")
	}
	return f.ShareStatusFunc(ctx, actor, shareID)
}
func (f *FakeDeliveryService) Analytics(ctx context.Context, actor domain.Actor, from, to time.Time) delivery.Analytics {
	if f.AnalyticsFunc == nil {
		return delivery.Analytics{}
	}
	return f.AnalyticsFunc(ctx, actor, from, to)
}
func (f *FakeDeliveryService) RecipientDeliveries(ctx context.Context, actor domain.Actor, recipientID uuid.UUID, page int) (delivery.FileDeliveries, error) {
	if f.RecipientDeliveriesFunc == nil {
		return nil, errors.New("not used")
	}
	return f.RecipientDeliveriesFunc(ctx, actor, recipientID, page)
}

type FakePresenceService struct {
	OnlineFunc  func(ctx context.Context, userID uuid.UUID) (bool, error)
	OfflineFunc func(ctx context.Context, userID uuid.UUID) (bool, error)
}

func (f *FakePresenceService) Online(ctx context.Context, userID uuid.UUID) (bool, error) {
	if f.OnlineFunc == nil {
		return false, errors.New("not used")
	}
	return f.OnlineFunc(ctx, userID)
}
func (f *FakePresenceService) Offline(ctx context.Context, userID uuid.UUID) (bool, error) {
	if f.OfflineFunc == nil {
		return false, errors.New("not used")
	}
	return f.OfflineFunc(ctx, userID)
}

func SignJWT(secret, userID, email string, exp time.Duration) (string, error) {
	type Claims struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		jwtv5.RegisteredClaims
	}
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   "user",
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "fileshare-api",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(exp)),
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func authHeader(t *testing.T, secret string, userID uuid.UUID, email string) map[string]string {
	t.Helper()
	tok, err := SignJWT(secret, userID.String(), email, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func newTestRouter(t *testing.T) (*gin.Engine, *jwtSvc.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return gin.New(), jwtSvc.New(testSecret)
}

func doReq(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Reader
	switch v := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}
