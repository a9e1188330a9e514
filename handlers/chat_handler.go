package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/middleware"
	"github.com/daemonXid/daemon-one/services/chat"
	"github.com/daemonXid/daemon-one/utils"
)

// ChatRequest represents an incoming chat question
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty" validate:"omitempty,uuid"`
	Question  string `json:"question" validate:"required"`
}

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	service *chat.Service
	logger  *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service *chat.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAsk handles POST /api/v1/chat/messages
func (h *ChatHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	// A missing session ID starts a new conversation.
	sessionID := uuid.New()
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			_ = utils.WriteBadRequest(w, "Invalid session ID", nil)
			return
		}
		sessionID = parsed
	}

	userID := middleware.GetUserIDFromContext(ctx)

	answer, err := h.service.Ask(ctx, userID, sessionID, req.Question)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, answer)
}

// HandleHistory handles GET /api/v1/chat/messages
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid or missing session_id", nil)
		return
	}

	limit := parseQueryInt(r, "limit", 50)

	messages, err := h.service.History(ctx, sessionID, limit)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, messages)
}

// parseQueryInt reads an integer query parameter with a fallback
func parseQueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
