package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/jwt"
)

func TestAuthMiddleware_SetsActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := jwt.New("test-secret")
	id := uuid.New()

	var got user.Actor
	var ok bool
	r := gin.New()
	r.GET("/me", AuthMiddleware(svc), func(c *gin.Context) {
		got, ok = Actor(c)
		c.Status(http.StatusNoContent)
	})

	tok, err := svc.GenerateJWT(id.String(), "bob@example.com", "user", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.True(t, ok)
	assert.Equal(t, user.Actor{ID: id, Email: "bob@example.com"}, got)
}

func TestActor_MissingOrMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		id   any
	}{
		{name: "unset"},
		{name: "not a uuid", id: "u1"},
		{name: "nil uuid", id: uuid.Nil.String()},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if tt.id != nil {
				c.Set(CtxUserID, tt.id)
			}
			_, ok := Actor(c)
			assert.False(t, ok)
		})
	}
}
