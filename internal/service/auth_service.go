package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alerta-utec/alerta-api/internal/crypto"
	"github.com/alerta-utec/alerta-api/internal/models"
	"github.com/alerta-utec/alerta-api/internal/repository"
	"github.com/alerta-utec/alerta-api/internal/token"
	appErrors "github.com/alerta-utec/alerta-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, email string, ts time.Time) error
}

// AuthConfig defines the token lifetimes used by authentication flows.
type AuthConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthService provides the registration and login use cases.
type AuthService struct {
	repo      authUserRepository
	tokens    *token.Service
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, tokens *token.Service, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, tokens: tokens, validator: validate, logger: logger, config: config}
}

// Register creates a new active account. No token is issued; registration and
// login are independent steps.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        models.NormalizeEmail(req.Email),
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		Status:       models.StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, appErrors.Clone(appErrors.ErrUserAlreadyExists, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist user")
	}

	view := models.NewUserResponse(user)
	return &view, nil
}

// Login verifies credentials and issues an access/refresh token pair carrying
// the account's role.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	email := models.NormalizeEmail(req.Email)
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// same error as a wrong password, to avoid leaking account existence
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if user.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrUserDisabled, "")
	}

	if !crypto.CheckPassword(user.PasswordHash, req.Password) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.Email, now); err != nil {
		// best-effort: staleness of last_login_at is accepted
		s.logger.Warn("failed to update last login", zap.String("email", user.Email), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	accessToken, err := s.tokens.Sign(user.Email, user.Role, models.TokenTypeAccess, s.config.AccessTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}
	refreshToken, err := s.tokens.Sign(user.Email, user.Role, models.TokenTypeRefresh, s.config.RefreshTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign refresh token")
	}

	return &models.LoginResponse{
		User: models.NewUserResponse(user),
		Tokens: models.AuthTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int64(s.config.AccessTTL.Seconds()),
		},
	}, nil
}

// ValidateToken verifies an access token string and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}
