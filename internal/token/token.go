// Package token signs and verifies the service's bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/alerta-utec/alerta-api/internal/models"
	"github.com/alerta-utec/alerta-api/internal/secret"
)

// ErrInvalidToken covers every verification failure. Forged, malformed and
// expired tokens are indistinguishable to callers; the distinction is only
// logged internally.
var ErrInvalidToken = errors.New("token: invalid token")

// Service builds and validates signed, expiring claims using a single fixed
// HS256 secret resolved at startup.
type Service struct {
	secret *secret.Secret
	logger *zap.Logger
}

// NewService constructs a token service around the resolved signing secret.
func NewService(s *secret.Secret, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{secret: s, logger: logger}
}

// Sign issues a compact token for the subject with the given role, type and
// lifetime. Expiry is issued-at plus ttl.
func (s *Service) Sign(subject string, role models.UserRole, tokenType models.TokenType, ttl time.Duration) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.TokenClaims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret.Bytes())
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry in one pass and returns the
// embedded claims. The role comes from the claims as issued, never re-derived.
func (s *Service) Verify(tokenString string) (*models.TokenClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret.Bytes(), nil
	})
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*models.TokenClaims)
	if !ok || !tok.Valid {
		s.logger.Debug("token rejected", zap.String("reason", "invalid claims"))
		return nil, ErrInvalidToken
	}

	return claims, nil
}
