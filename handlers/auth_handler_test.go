package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/auth/jwtauth"
	"github.com/daemonXid/daemon-one/config"
)

func newTestValidator(t *testing.T) *jwtauth.Validator {
	t.Helper()
	validator, err := jwtauth.NewValidator(config.AuthConfig{
		Secret:   "test-secret",
		Issuer:   "daemon-one",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return validator
}

func TestHandleToken(t *testing.T) {
	logger := zap.NewNop()

	t.Run("issues a verifiable token", func(t *testing.T) {
		validator := newTestValidator(t)
		handler := NewAuthHandler(validator, false, logger)

		subject := uuid.NewString()
		body := strings.NewReader(`{"subject": "` + subject + `", "email": "dev@example.com", "role": "admin"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
		w := httptest.NewRecorder()

		handler.HandleToken(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		data := response["data"].(map[string]interface{})
		token := data["token"].(string)

		claims, err := validator.ValidateToken(req.Context(), token)
		require.NoError(t, err)
		assert.Equal(t, subject, claims.Sub)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("disabled in production", func(t *testing.T) {
		handler := NewAuthHandler(newTestValidator(t), true, logger)

		body := strings.NewReader(`{"subject": "` + uuid.NewString() + `", "email": "dev@example.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
		w := httptest.NewRecorder()

		handler.HandleToken(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects a non-uuid subject", func(t *testing.T) {
		handler := NewAuthHandler(newTestValidator(t), false, logger)

		body := strings.NewReader(`{"subject": "alice", "email": "dev@example.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
		w := httptest.NewRecorder()

		handler.HandleToken(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
