package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/auth/jwtauth"
	"github.com/daemonXid/daemon-one/utils"
)

// TokenRequest represents a development token request
type TokenRequest struct {
	Subject string `json:"subject" validate:"required,uuid"`
	Email   string `json:"email" validate:"required,email"`
	Role    string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

// TokenResponse represents an issued token
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthHandler issues development tokens. Disabled in production.
type AuthHandler struct {
	validator  *jwtauth.Validator
	production bool
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(validator *jwtauth.Validator, production bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		validator:  validator,
		production: production,
		logger:     logger,
	}
}

// HandleToken handles POST /auth/token
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if h.production {
		_ = utils.WriteForbidden(w, "Token endpoint is disabled in production")
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	token, err := h.validator.IssueToken(req.Subject, req.Email, role)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to issue token")
		return
	}

	_ = utils.WriteOK(w, TokenResponse{Token: token})
}
