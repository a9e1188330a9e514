package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/middleware"
	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/services"
	"github.com/daemonXid/daemon-one/services/ai"
	"github.com/daemonXid/daemon-one/services/audit"
	"github.com/daemonXid/daemon-one/utils"
)

// CompletionRequest represents a direct completion request
type CompletionRequest struct {
	Prompt      string         `json:"prompt" validate:"required"`
	Model       string         `json:"model,omitempty"`
	Temperature *float64       `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   int            `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Schema      *SchemaRequest `json:"schema,omitempty"`
}

// SchemaRequest describes a structured-output constraint
type SchemaRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Definition  json.RawMessage `json:"definition" validate:"required"`
}

// EmbeddingRequest represents an embedding request
type EmbeddingRequest struct {
	Text string `json:"text" validate:"required"`
}

// EmbeddingResponse represents an embedding result
type EmbeddingResponse struct {
	Provider  string    `json:"provider"`
	Embedding []float64 `json:"embedding"`
	Dimension int       `json:"dimension"`
}

// AIHandler exposes the provider façade directly over HTTP
type AIHandler struct {
	facade *ai.Facade
	audit  *audit.Service
	logger *zap.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(facade *ai.Facade, auditSvc *audit.Service, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		facade: facade,
		audit:  auditSvc,
		logger: logger,
	}
}

// HandleCompletion handles POST /api/v1/ai/completions
func (h *AIHandler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	client, err := h.facade.Client()
	if err != nil {
		HandleServiceError(w, services.WrapProviderError(err), h.logger)
		return
	}

	aiReq := ai.CompletionRequest{
		Prompt:      req.Prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.Schema != nil {
		aiReq.Schema = &ai.Schema{
			Name:        req.Schema.Name,
			Description: req.Schema.Description,
			Definition:  req.Schema.Definition,
		}
	}

	started := time.Now()
	resp, err := client.Complete(ctx, aiReq)
	latency := time.Since(started)

	userID := middleware.GetUserIDFromContext(ctx)
	h.recordAudit(ctx, models.AuditActionCompletion, userID, client.Name(), resp, latency, err)

	if err != nil {
		HandleServiceError(w, services.WrapProviderError(err), h.logger)
		return
	}

	_ = utils.WriteOK(w, resp)
}

// HandleEmbedding handles POST /api/v1/ai/embeddings
func (h *AIHandler) HandleEmbedding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	client, err := h.facade.Client()
	if err != nil {
		HandleServiceError(w, services.WrapProviderError(err), h.logger)
		return
	}

	started := time.Now()
	vector, err := client.Embed(ctx, req.Text)
	latency := time.Since(started)

	userID := middleware.GetUserIDFromContext(ctx)
	h.recordAudit(ctx, models.AuditActionEmbedding, userID, client.Name(), nil, latency, err)

	if err != nil {
		HandleServiceError(w, services.WrapProviderError(err), h.logger)
		return
	}

	_ = utils.WriteOK(w, EmbeddingResponse{
		Provider:  client.Name(),
		Embedding: vector,
		Dimension: len(vector),
	})
}

func (h *AIHandler) recordAudit(ctx context.Context, action models.AuditAction, userID uuid.UUID, provider string, resp *ai.CompletionResponse, latency time.Duration, callErr error) {
	log := models.NewAuditLog(action, "ai_call").
		WithRequestID(middleware.GetRequestIDFromContext(ctx))
	if userID != uuid.Nil {
		log.WithUser(userID)
	}
	model := ""
	tokens := 0
	if resp != nil {
		provider = resp.Provider
		model = resp.Model
		tokens = resp.Usage.TotalTokens
	}
	log.WithProviderMetrics(provider, model, tokens, int(latency.Milliseconds()))
	if callErr != nil {
		log.WithError(callErr.Error())
	}
	h.audit.Record(log)
}
