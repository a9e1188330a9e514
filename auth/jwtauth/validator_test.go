package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daemonXid/daemon-one/config"
)

func testValidator(t *testing.T, ttl time.Duration) *Validator {
	t.Helper()
	v, err := NewValidator(config.AuthConfig{
		Secret:   "test-secret-at-least-32-bytes-long",
		Issuer:   "daemon-one",
		TokenTTL: ttl,
	})
	require.NoError(t, err)
	return v
}

func TestIssueAndValidateToken(t *testing.T) {
	v := testValidator(t, time.Hour)

	token, err := v.IssueToken("4f5c8b1e-0000-4000-8000-000000000001", "dev@example.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := v.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "4f5c8b1e-0000-4000-8000-000000000001", claims.Sub)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Greater(t, claims.Exp, time.Now().Unix())
}

func TestValidateTokenExpired(t *testing.T) {
	v := testValidator(t, -time.Minute)

	token, err := v.IssueToken("user-1", "dev@example.com", "user")
	require.NoError(t, err)

	_, err = v.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	v := testValidator(t, time.Hour)
	token, err := v.IssueToken("user-1", "dev@example.com", "user")
	require.NoError(t, err)

	other, err := NewValidator(config.AuthConfig{
		Secret:   "a-completely-different-secret-value",
		Issuer:   "daemon-one",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	issuing, err := NewValidator(config.AuthConfig{
		Secret:   "test-secret-at-least-32-bytes-long",
		Issuer:   "someone-else",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)

	token, err := issuing.IssueToken("user-1", "dev@example.com", "user")
	require.NoError(t, err)

	v := testValidator(t, time.Hour)
	_, err = v.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestNewValidatorRequiresSecret(t *testing.T) {
	_, err := NewValidator(config.AuthConfig{Issuer: "daemon-one"})
	assert.Error(t, err)
}
