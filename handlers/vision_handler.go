package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/middleware"
	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/services/vision"
	"github.com/daemonXid/daemon-one/utils"
)

// RegisterMediaRequest represents a media registration request
type RegisterMediaRequest struct {
	Title     string `json:"title,omitempty" validate:"omitempty,max=500"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
	SourceURL string `json:"source_url" validate:"required,url"`
}

// AnalyzeMediaRequest represents an analysis request
type AnalyzeMediaRequest struct {
	Kind string `json:"kind,omitempty" validate:"omitempty,max=64"`
}

// VisionHandler handles visual media HTTP requests
type VisionHandler struct {
	service *vision.Service
	logger  *zap.Logger
}

// NewVisionHandler creates a new VisionHandler
func NewVisionHandler(service *vision.Service, logger *zap.Logger) *VisionHandler {
	return &VisionHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRegister handles POST /api/v1/media
func (h *VisionHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	userID := middleware.GetUserIDFromContext(ctx)

	media, err := h.service.Register(ctx, userID, req.Title, models.MediaType(req.MediaType), req.SourceURL)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, media)
}

// HandleGet handles GET /api/v1/media/{id}
func (h *VisionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}

	media, err := h.service.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, media)
}

// HandleList handles GET /api/v1/media
func (h *VisionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserIDFromContext(ctx)

	limit := parseQueryInt(r, "limit", 20)
	offset := parseQueryInt(r, "offset", 0)

	items, err := h.service.List(ctx, userID, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, items)
}

// HandleAnalyze handles POST /api/v1/media/{id}/analyze
func (h *VisionHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}

	// Body is optional: an empty body requests the default analysis.
	var req AnalyzeMediaRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
	}

	record, err := h.service.Analyze(r.Context(), id, req.Kind)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, record)
}

// HandleAnalyses handles GET /api/v1/media/{id}/analyses
func (h *VisionHandler) HandleAnalyses(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mediaID(w, r)
	if !ok {
		return
	}

	records, err := h.service.Analyses(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, records)
}

func (h *VisionHandler) mediaID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid media ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
