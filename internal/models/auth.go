package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes access tokens from refresh tokens. The two are
// structurally identical; consumers must check the type before trusting a
// token for its purpose.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// RegisterRequest holds the payload for creating a new account.
type RegisterRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=128"`
	FullName string   `json:"full_name" validate:"required,min=3,max=80"`
	Role     UserRole `json:"role" validate:"required,oneof=student staff authority"`
}

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the account view returned by the API; it never carries the
// password hash.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        UserRole   `json:"role"`
	Status      UserStatus `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuthTokens bundles the issued token pair.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResponse returns the account view and the issued tokens.
type LoginResponse struct {
	User   UserResponse `json:"user"`
	Tokens AuthTokens   `json:"tokens"`
}

// TokenClaims is the signed JWT payload. Subject carries the account email;
// Role is copied at issuance time and is not re-derived on verification.
type TokenClaims struct {
	Role      UserRole  `json:"role"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// NewUserResponse projects a stored user into its API view.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
	}
}
