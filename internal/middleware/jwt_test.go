package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alerta-utec/alerta-api/internal/models"
	"github.com/alerta-utec/alerta-api/internal/secret"
	"github.com/alerta-utec/alerta-api/internal/token"
)

func newTokenService(t *testing.T) *token.Service {
	t.Helper()
	resolved, err := secret.NewResolver("test-secret", "", nil).Resolve(context.Background())
	require.NoError(t, err)
	return token.NewService(resolved, zap.NewNop())
}

func runJWT(t *testing.T, tokens *token.Service, header string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	JWT(tokens)(c)
	return rec, c
}

func TestJWTAcceptsAccessToken(t *testing.T) {
	tokens := newTokenService(t)
	signed, err := tokens.Sign("a@x.edu", models.RoleStudent, models.TokenTypeAccess, 15*time.Minute)
	require.NoError(t, err)

	rec, c := runJWT(t, tokens, "Bearer "+signed)

	assert.Equal(t, http.StatusOK, rec.Code)
	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims := value.(*models.TokenClaims)
	assert.Equal(t, "a@x.edu", claims.Subject)
}

func TestJWTRejectsRefreshToken(t *testing.T) {
	tokens := newTokenService(t)
	signed, err := tokens.Sign("a@x.edu", models.RoleStudent, models.TokenTypeRefresh, 12*time.Hour)
	require.NoError(t, err)

	rec, _ := runJWT(t, tokens, "Bearer "+signed)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsUnknownRoleClaim(t *testing.T) {
	tokens := newTokenService(t)
	signed, err := tokens.Sign("a@x.edu", models.UserRole("admin"), models.TokenTypeAccess, 15*time.Minute)
	require.NoError(t, err)

	rec, _ := runJWT(t, tokens, "Bearer "+signed)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, newTokenService(t), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
