package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeValidator struct {
	claims *Claims
	err    error
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("rejects a missing header", func(t *testing.T) {
		m := NewAuthMiddleware(&fakeValidator{}, logger)
		called := false

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		m.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("rejects a malformed header", func(t *testing.T) {
		m := NewAuthMiddleware(&fakeValidator{}, logger)
		called := false

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()

		m.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		m := NewAuthMiddleware(&fakeValidator{err: errors.New("expired")}, logger)
		called := false

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		w := httptest.NewRecorder()

		m.RequireAuth(okHandler(&called)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("populates claims and user id", func(t *testing.T) {
		userID := uuid.New()
		m := NewAuthMiddleware(&fakeValidator{claims: &Claims{
			Sub:   userID.String(),
			Email: "dev@example.com",
			Role:  "user",
		}}, logger)

		var gotClaims *Claims
		var gotUserID uuid.UUID
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotClaims = GetClaimsFromContext(r.Context())
			gotUserID = GetUserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()

		m.RequireAuth(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, gotClaims)
		assert.Equal(t, "dev@example.com", gotClaims.Email)
		assert.Equal(t, userID, gotUserID)
	})
}

func TestRequireRole(t *testing.T) {
	logger := zap.NewNop()
	m := NewAuthMiddleware(&fakeValidator{}, logger)

	t.Run("rejects when claims are missing", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		m.RequireRole("admin")(okHandler(&called)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("rejects an insufficient role", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := WithClaims(req.Context(), &Claims{Sub: uuid.NewString(), Role: "user"})
		w := httptest.NewRecorder()

		m.RequireRole("admin")(okHandler(&called)).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, called)
	})

	t.Run("allows a matching role", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := WithClaims(req.Context(), &Claims{Sub: uuid.NewString(), Role: "admin"})
		w := httptest.NewRecorder()

		m.RequireRole("admin")(okHandler(&called)).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})
}
