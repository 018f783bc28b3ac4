package secret

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	payloads map[string]string
	err      error
	calls    int
}

func (s *stubSource) Get(ctx context.Context, ref string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.payloads[ref], nil
}

func TestResolveLiteralWins(t *testing.T) {
	source := &stubSource{payloads: map[string]string{"jwt/signing": "from-store"}}
	r := NewResolver("literal-secret", "jwt/signing", source)

	secret, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("literal-secret"), secret.Bytes())
	assert.Zero(t, source.calls)
}

func TestResolveRawPayload(t *testing.T) {
	source := &stubSource{payloads: map[string]string{"jwt/signing": "raw-secret"}}
	r := NewResolver("", "jwt/signing", source)

	secret, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-secret"), secret.Bytes())
}

func TestResolveStructuredPayloadPrefersSigningKey(t *testing.T) {
	source := &stubSource{payloads: map[string]string{
		"jwt/signing": `{"JWT_SIGNING_KEY":"structured-secret","other":"x"}`,
	}}
	r := NewResolver("", "jwt/signing", source)

	secret, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("structured-secret"), secret.Bytes())
}

func TestResolveStructuredPayloadWithMixedFieldTypes(t *testing.T) {
	source := &stubSource{payloads: map[string]string{
		"jwt/signing": `{"JWT_SIGNING_KEY":"k","version":2}`,
	}}
	r := NewResolver("", "jwt/signing", source)

	secret, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("k"), secret.Bytes())
}

func TestResolveStructuredPayloadWithNonStringKeyFallsBack(t *testing.T) {
	source := &stubSource{payloads: map[string]string{
		"jwt/signing": `{"JWT_SIGNING_KEY":42}`,
	}}
	r := NewResolver("", "jwt/signing", source)

	secret, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"JWT_SIGNING_KEY":42}`), secret.Bytes())
}

func TestResolveStructuredPayloadWithoutKeyFallsBack(t *testing.T) {
	source := &stubSource{payloads: map[string]string{
		"jwt/signing": `{"other":"x"}`,
	}}
	r := NewResolver("", "jwt/signing", source)

	secret, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"other":"x"}`), secret.Bytes())
}

func TestResolveNotConfigured(t *testing.T) {
	r := NewResolver("", "", nil)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveMissingStoreEntry(t *testing.T) {
	source := &stubSource{payloads: map[string]string{}}
	r := NewResolver("", "jwt/signing", source)

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveCachesForProcessLifetime(t *testing.T) {
	source := &stubSource{payloads: map[string]string{"jwt/signing": "v1"}}
	r := NewResolver("", "jwt/signing", source)

	first, err := r.Resolve(context.Background())
	require.NoError(t, err)

	source.payloads["jwt/signing"] = "v2"
	second, err := r.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Bytes(), second.Bytes())
	assert.Equal(t, 1, source.calls)
}

func TestResolveSourceError(t *testing.T) {
	source := &stubSource{err: errors.New("store unavailable")}
	r := NewResolver("", "jwt/signing", source)

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
