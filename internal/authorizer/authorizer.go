// Package authorizer translates bearer-token checks into the two gateway
// authorization contracts. Both adapters share one verification core; only
// the response rendering differs.
package authorizer

import (
	"errors"
	"strings"

	"github.com/alerta-utec/alerta-api/internal/models"
	"github.com/alerta-utec/alerta-api/internal/token"
)

// ErrUnauthorized is the single denial both adapters emit. Missing headers,
// malformed headers, forged signatures and expired tokens are all reported
// identically.
var ErrUnauthorized = errors.New("authorizer: unauthorized")

// SimpleResult is the allow/deny-with-context contract.
type SimpleResult struct {
	IsAuthorized bool              `json:"isAuthorized"`
	Context      map[string]string `json:"context"`
}

// PolicyStatement is a single statement of the policy-document contract.
type PolicyStatement struct {
	Action   string `json:"Action"`
	Effect   string `json:"Effect"`
	Resource string `json:"Resource"`
}

// PolicyDocument is the legacy IAM-style policy shape.
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyResult is the policy-document contract. A deny is signaled by an
// error, never by a Deny effect: the calling gateway only tolerates
// throw-to-deny semantics for this variant.
type PolicyResult struct {
	PrincipalID    string            `json:"principalId"`
	PolicyDocument PolicyDocument    `json:"policyDocument"`
	Context        map[string]string `json:"context"`
}

const (
	policyVersion = "2012-10-17"
	invokeAction  = "execute-api:Invoke"
)

// Authorizer adapts token verification to gateway authorization responses.
type Authorizer struct {
	tokens *token.Service
}

// New wraps a token service.
func New(tokens *token.Service) *Authorizer {
	return &Authorizer{tokens: tokens}
}

// Simple verifies the Authorization header and renders the flat allow shape.
func (a *Authorizer) Simple(authorizationHeader string) (*SimpleResult, error) {
	claims, err := a.check(authorizationHeader)
	if err != nil {
		return nil, err
	}

	return &SimpleResult{
		IsAuthorized: true,
		Context: map[string]string{
			"sub":       claims.Subject,
			"role":      string(claims.Role),
			"tokenType": string(claims.TokenType),
		},
	}, nil
}

// Policy verifies the Authorization header and renders an allow statement
// scoped to the exact resource being invoked, never a wildcard.
func (a *Authorizer) Policy(authorizationHeader, methodARN string) (*PolicyResult, error) {
	claims, err := a.check(authorizationHeader)
	if err != nil {
		return nil, err
	}

	return &PolicyResult{
		PrincipalID: claims.Subject,
		PolicyDocument: PolicyDocument{
			Version: policyVersion,
			Statement: []PolicyStatement{
				{Action: invokeAction, Effect: "Allow", Resource: methodARN},
			},
		},
		Context: map[string]string{
			"sub":   claims.Subject,
			"role":  string(claims.Role),
			"email": claims.Subject,
		},
	}, nil
}

func (a *Authorizer) check(authorizationHeader string) (*models.TokenClaims, error) {
	tokenString, ok := bearerToken(authorizationHeader)
	if !ok {
		return nil, ErrUnauthorized
	}

	claims, err := a.tokens.Verify(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
