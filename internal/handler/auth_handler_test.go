package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alerta-utec/alerta-api/internal/models"
	"github.com/alerta-utec/alerta-api/internal/repository"
	"github.com/alerta-utec/alerta-api/internal/secret"
	"github.com/alerta-utec/alerta-api/internal/service"
	"github.com/alerta-utec/alerta-api/internal/token"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[models.NormalizeEmail(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	key := models.NormalizeEmail(user.Email)
	if _, exists := f.users[key]; exists {
		return repository.ErrEmailTaken
	}
	stored := *user
	f.users[key] = &stored
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, email string, ts time.Time) error {
	if user, ok := f.users[models.NormalizeEmail(email)]; ok {
		user.LastLoginAt = &ts
	}
	return nil
}

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	resolved, err := secret.NewResolver("test-secret", "", nil).Resolve(context.Background())
	require.NoError(t, err)
	tokens := token.NewService(resolved, zap.NewNop())
	svc := service.NewAuthService(newFakeUserRepo(), tokens, validator.New(), zap.NewNop(), service.AuthConfig{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 12 * time.Hour,
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerRegisterReturnsOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t)

	body := `{"email":"a@x.edu","password":"Secure123!","full_name":"A B","role":"student"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "a@x.edu", envelope.Data["email"])
}

func TestAuthHandlerRegisterInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandler(t)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
