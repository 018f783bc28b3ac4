// Package secret resolves the token signing secret at startup.
//
// The secret comes from exactly one of two places, in priority order: a
// directly configured literal, or a reference into the managed secret store.
// A referenced payload may be a raw string or a JSON object; if it parses as
// JSON the JWT_SIGNING_KEY field is preferred and the raw payload is the
// fallback. Resolution happens once per process; rotating the stored value
// requires a restart.
package secret

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// signingKeyField names the JSON field carrying the key inside a structured
// secret payload.
const signingKeyField = "JWT_SIGNING_KEY"

// ErrNotConfigured is returned when neither the literal nor the reference
// yields a usable secret. This is a configuration error: the service must not
// start without a signing secret.
var ErrNotConfigured = errors.New("secret: signing secret not configured")

// Source looks up a secret payload by reference in an external store.
// Implementations must not log secret values.
type Source interface {
	Get(ctx context.Context, ref string) (string, error)
}

// Secret is the resolved signing secret. It is immutable after resolution and
// safe to share across goroutines without locking.
type Secret struct {
	value []byte
}

// Bytes returns the raw secret material.
func (s *Secret) Bytes() []byte {
	return s.value
}

// Resolver resolves the signing secret once and caches it for the process
// lifetime.
type Resolver struct {
	literal string
	ref     string
	source  Source

	once   sync.Once
	secret *Secret
	err    error
}

// NewResolver builds a resolver from a configured literal, a store reference
// and the source backing that reference. Either literal or ref may be empty;
// the literal wins when both are set.
func NewResolver(literal, ref string, source Source) *Resolver {
	return &Resolver{literal: literal, ref: ref, source: source}
}

// Resolve returns the signing secret, performing the lookup on first call
// only. Subsequent calls return the cached value even if the external store
// changes.
func (r *Resolver) Resolve(ctx context.Context) (*Secret, error) {
	r.once.Do(func() {
		value, err := r.resolve(ctx)
		if err != nil {
			r.err = err
			return
		}
		r.secret = &Secret{value: []byte(value)}
	})
	return r.secret, r.err
}

func (r *Resolver) resolve(ctx context.Context) (string, error) {
	if r.literal != "" {
		return r.literal, nil
	}

	if r.ref != "" && r.source != nil {
		payload, err := r.source.Get(ctx, r.ref)
		if err != nil {
			return "", fmt.Errorf("secret: fetch %q: %w", r.ref, err)
		}
		if payload != "" {
			return extractKey(payload), nil
		}
	}

	return "", ErrNotConfigured
}

// extractKey prefers the named key field of a structured payload and falls
// back to the raw payload when the field is absent or not a string.
func extractKey(payload string) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return payload
	}
	if key, ok := parsed[signingKeyField].(string); ok && key != "" {
		return key
	}
	return payload
}
