// Package vision registers visual media and runs AI scene analysis on it.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/middleware"
	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/repositories"
	"github.com/daemonXid/daemon-one/services"
	"github.com/daemonXid/daemon-one/services/ai"
	"github.com/daemonXid/daemon-one/services/audit"
)

const analysisMaxTokens = 768

// AnalysisKindScene is the default analysis: a scene description with labels.
const AnalysisKindScene = "scene"

// analysisSchema constrains the analysis completion output.
var analysisSchema = &ai.Schema{
	Name:        "MediaAnalysis",
	Description: "Analysis of a visual media item.",
	Definition: json.RawMessage(`{
		"type": "object",
		"properties": {
			"description": {"type": "string"},
			"labels": {"type": "array", "items": {"type": "string"}},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1}
		},
		"required": ["description", "labels", "confidence"]
	}`),
}

type analysisResult struct {
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Confidence  float64  `json:"confidence"`
}

// ClientSource supplies the active AI provider client
type ClientSource interface {
	Client() (ai.Client, error)
}

// Service manages visual media and analysis records
type Service struct {
	clients ClientSource
	repo    repositories.MediaRepository
	audit   *audit.Service
	logger  *zap.Logger
}

// NewService creates a new vision service
func NewService(clients ClientSource, repo repositories.MediaRepository, auditSvc *audit.Service, logger *zap.Logger) *Service {
	return &Service{
		clients: clients,
		repo:    repo,
		audit:   auditSvc,
		logger:  logger,
	}
}

// Register stores a new media item
func (s *Service) Register(ctx context.Context, userID uuid.UUID, title string, mediaType models.MediaType, sourceURL string) (*models.VisualMedia, error) {
	if mediaType != models.MediaTypeImage && mediaType != models.MediaTypeVideo {
		return nil, services.ErrInvalidMediaType
	}
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "source URL is required", nil)
	}
	if strings.TrimSpace(title) == "" {
		title = "Untitled media"
	}

	media := models.NewVisualMedia(userID, title, mediaType, sourceURL)
	if err := s.repo.Create(ctx, media); err != nil {
		return nil, services.WrapInternal("failed to store media", err)
	}
	return media, nil
}

// Get retrieves a media item by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.VisualMedia, error) {
	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrMediaNotFound
		}
		return nil, services.WrapInternal("failed to load media", err)
	}
	return media, nil
}

// List retrieves media for a user with pagination, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.VisualMedia, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list media", err)
	}
	return items, nil
}

// Analyze runs a structured analysis of a media item and persists the result
func (s *Service) Analyze(ctx context.Context, mediaID uuid.UUID, kind string) (*models.AnalysisRecord, error) {
	if kind == "" {
		kind = AnalysisKindScene
	}

	media, err := s.Get(ctx, mediaID)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.Client()
	if err != nil {
		return nil, services.WrapProviderError(err)
	}

	prompt := buildAnalysisPrompt(media, kind)
	started := time.Now()
	resp, err := client.Complete(ctx, ai.CompletionRequest{
		Prompt:    prompt,
		MaxTokens: analysisMaxTokens,
		Schema:    analysisSchema,
	})
	latency := time.Since(started)
	if err != nil {
		s.recordAudit(ctx, media, client.Name(), "", 0, latency, err)
		return nil, services.WrapProviderError(err)
	}

	var result analysisResult
	if err := json.Unmarshal(resp.Structured, &result); err != nil {
		return nil, services.WrapExternal("AI provider returned unusable structured output", err)
	}

	labels, err := json.Marshal(result.Labels)
	if err != nil {
		return nil, services.WrapInternal("failed to encode labels", err)
	}

	record := models.NewAnalysisRecord(media.ID, kind).
		WithResult(result.Description, labels, result.Confidence).
		WithProvider(resp.Provider, resp.Model)

	if err := s.repo.InsertAnalysis(ctx, record); err != nil {
		return nil, services.WrapInternal("failed to store analysis", err)
	}

	s.recordAudit(ctx, media, resp.Provider, resp.Model, resp.Usage.TotalTokens, latency, nil)
	return record, nil
}

// Analyses retrieves analysis records for a media item
func (s *Service) Analyses(ctx context.Context, mediaID uuid.UUID) ([]*models.AnalysisRecord, error) {
	if _, err := s.Get(ctx, mediaID); err != nil {
		return nil, err
	}
	records, err := s.repo.GetAnalyses(ctx, mediaID)
	if err != nil {
		return nil, services.WrapInternal("failed to load analyses", err)
	}
	return records, nil
}

func buildAnalysisPrompt(media *models.VisualMedia, kind string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following %s (%s analysis).\n", media.MediaType, kind)
	fmt.Fprintf(&b, "Title: %s\n", media.Title)
	fmt.Fprintf(&b, "Source: %s\n", media.SourceURL)
	if media.Width > 0 && media.Height > 0 {
		fmt.Fprintf(&b, "Dimensions: %dx%d\n", media.Width, media.Height)
	}
	if media.DurationSeconds > 0 {
		fmt.Fprintf(&b, "Duration: %.1fs\n", media.DurationSeconds)
	}
	b.WriteString("Describe the scene, list the most relevant labels and estimate your confidence.")
	return b.String()
}

func (s *Service) recordAudit(ctx context.Context, media *models.VisualMedia, provider, model string, tokens int, latency time.Duration, callErr error) {
	log := models.NewAuditLog(models.AuditActionMediaAnalyze, "visual_media").
		WithUser(media.UserID).
		WithResource(media.ID).
		WithRequestID(middleware.GetRequestIDFromContext(ctx)).
		WithProviderMetrics(provider, model, tokens, int(latency.Milliseconds()))
	if callErr != nil {
		log.WithError(callErr.Error())
	}
	s.audit.Record(log)
}
