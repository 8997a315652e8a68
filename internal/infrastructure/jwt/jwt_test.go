package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate_Success(t *testing.T) {
	s := New("super-secret")

	tok, err := s.GenerateJWT("u-123", "alice@example.com", "admin", time.Hour)
	require.NoError(t, err, "GenerateJWT should not error")
	require.NotEmpty(t, tok, "token must not be empty")

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err, "ValidateToken should not error for fresh token")
	require.NotNil(t, claims)

	assert.Equal(t, "u-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "u-123", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.Time.After(time.Now().Add(-1*time.Second)))
}

func TestValidateToken_Table(t *testing.T) {
	makeToken := func(secret string, exp time.Duration) string {
		s := New(secret)
		tok, err := s.GenerateJWT("user-42", "bob@example.com", "user", exp)
		require.NoError(t, err)
		return tok
	}
	foreignIssuer := func() string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID: "user-42",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		})
		str, err := tok.SignedString([]byte("k1"))
		require.NoError(t, err)
		return str
	}

	tests := []struct {
		name    string
		secret  string
		token   string
		wantErr error
	}{
		{
			name:   "valid token",
			secret: "k1",
			token:  makeToken("k1", 5*time.Minute),
		},
		{
			name:    "invalid secret (signature mismatch)",
			secret:  "k2",
			token:   makeToken("k1", 5*time.Minute),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired token",
			secret:  "k1",
			token:   makeToken("k1", -1*time.Minute),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token string",
			secret:  "k1",
			token:   "not-a-jwt",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "foreign issuer",
			secret:  "k1",
			token:   foreignIssuer(),
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.secret)

			claims, err := s.ValidateToken(tt.token)
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.NotNil(t, claims)
				assert.Equal(t, "user-42", claims.UserID)
				assert.Equal(t, "bob@example.com", claims.Email)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}
