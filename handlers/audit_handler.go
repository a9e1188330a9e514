package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/services/audit"
	"github.com/daemonXid/daemon-one/utils"
)

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	service *audit.Service
	logger  *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service *audit.Service, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger,
	}
}

// HandleList handles GET /api/v1/audit
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50)
	offset := parseQueryInt(r, "offset", 0)

	logs, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, logs)
}
