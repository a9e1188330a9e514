package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/middleware"
	"github.com/daemonXid/daemon-one/services/paper"
	"github.com/daemonXid/daemon-one/utils"
)

// CreatePaperRequest represents a paper submission
type CreatePaperRequest struct {
	Title    string `json:"title" validate:"required,max=500"`
	Markdown string `json:"markdown" validate:"required"`
}

// TranslatePaperRequest represents a translation request
type TranslatePaperRequest struct {
	TargetLang string `json:"target_lang" validate:"required,min=2,max=32"`
}

// PaperHandler handles research paper HTTP requests
type PaperHandler struct {
	service *paper.Service
	logger  *zap.Logger
}

// NewPaperHandler creates a new PaperHandler
func NewPaperHandler(service *paper.Service, logger *zap.Logger) *PaperHandler {
	return &PaperHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate handles POST /api/v1/papers
func (h *PaperHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	userID := middleware.GetUserIDFromContext(ctx)

	created, err := h.service.Create(ctx, userID, req.Title, req.Markdown)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, created)
}

// HandleGet handles GET /api/v1/papers/{id}
func (h *PaperHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, found)
}

// HandleList handles GET /api/v1/papers
func (h *PaperHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserIDFromContext(ctx)

	limit := parseQueryInt(r, "limit", 20)
	offset := parseQueryInt(r, "offset", 0)

	papers, err := h.service.List(ctx, userID, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, papers)
}

// HandleProcess handles POST /api/v1/papers/{id}/process
func (h *PaperHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}

	processed, err := h.service.Process(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, processed)
}

// HandleTranslate handles POST /api/v1/papers/{id}/translate
func (h *PaperHandler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}

	var req TranslatePaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	translation, err := h.service.Translate(r.Context(), id, req.TargetLang)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, translation)
}

// HandleFormulas handles GET /api/v1/papers/{id}/formulas
func (h *PaperHandler) HandleFormulas(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}

	formulas, err := h.service.Formulas(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, formulas)
}

func (h *PaperHandler) paperID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid paper ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
