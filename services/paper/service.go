// Package paper implements research paper analysis: formula extraction,
// structured summaries and formula-safe translation.
package paper

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

const (
	summaryMaxTokens   = 1024
	translateMaxTokens = 4096
)

// paperSummarySchema constrains the summary completion to the PaperSummary shape.
var paperSummarySchema = &ai.Schema{
	Name:        "PaperSummary",
	Description: "Summary of a research paper.",
	Definition: json.RawMessage(`{
		"type": "object",
		"properties": {
			"abstract": {"type": "string"},
			"key_findings": {"type": "array", "items": {"type": "string"}},
			"keywords": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["abstract", "key_findings", "keywords"]
	}`),
}

// ClientSource supplies the active AI provider client
type ClientSource interface {
	Client() (ai.Client, error)
}

// Service manages research papers and their AI-driven analysis
type Service struct {
	clients ClientSource
	repo    repositories.PaperRepository
	audit   *audit.Service
	logger  *zap.Logger
}

// NewService creates a new paper service
func NewService(clients ClientSource, repo repositories.PaperRepository, auditSvc *audit.Service, logger *zap.Logger) *Service {
	return &Service{
		clients: clients,
		repo:    repo,
		audit:   auditSvc,
		logger:  logger,
	}
}

// Create registers a new paper in pending state
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, markdown string) (*models.ResearchPaper, error) {
	title = strings.TrimSpace(title)
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, services.ErrEmptyPaperBody
	}
	if title == "" {
		title = "Untitled paper"
	}

	paper := models.NewResearchPaper(userID, title, markdown)
	if err := s.repo.Create(ctx, paper); err != nil {
		return nil, services.WrapInternal("failed to store paper", err)
	}
	return paper, nil
}

// Get retrieves a paper by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ResearchPaper, error) {
	paper, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrPaperNotFound
		}
		return nil, services.WrapInternal("failed to load paper", err)
	}
	return paper, nil
}

// List retrieves papers for a user with pagination, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ResearchPaper, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	papers, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list papers", err)
	}
	return papers, nil
}

// Formulas retrieves the formula snippets extracted from a paper
func (s *Service) Formulas(ctx context.Context, paperID uuid.UUID) ([]*models.FormulaSnippet, error) {
	if _, err := s.Get(ctx, paperID); err != nil {
		return nil, err
	}
	snippets, err := s.repo.GetFormulas(ctx, paperID)
	if err != nil {
		return nil, services.WrapInternal("failed to load formulas", err)
	}
	return snippets, nil
}

// Process extracts formulas and produces the structured summary for a paper.
// The paper moves pending -> processing -> completed|failed.
func (s *Service) Process(ctx context.Context, paperID uuid.UUID) (*models.ResearchPaper, error) {
	paper, err := s.Get(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper.Status == models.PaperStatusProcessing {
		return nil, services.ErrPaperAlreadyProcessing
	}

	client, err := s.clients.Client()
	if err != nil {
		return nil, services.WrapProviderError(err)
	}

	paper.MarkAsProcessing()
	if err := s.repo.Update(ctx, paper); err != nil {
		return nil, services.WrapInternal("failed to update paper status", err)
	}

	formulas := extractFormulas(paper.Markdown)
	snippets := make([]*models.FormulaSnippet, len(formulas))
	for i, latex := range formulas {
		snippets[i] = models.NewFormulaSnippet(paper.ID, latex, i)
	}
	if err := s.repo.InsertFormulas(ctx, snippets); err != nil {
		s.failPaper(ctx, paper, err)
		return nil, services.WrapInternal("failed to store formulas", err)
	}

	prompt := fmt.Sprintf("Summarize the following research paper.\n\n%s", paper.Markdown)
	started := time.Now()
	resp, err := client.Complete(ctx, ai.CompletionRequest{
		Prompt:    prompt,
		MaxTokens: summaryMaxTokens,
		Schema:    paperSummarySchema,
	})
	latency := time.Since(started)
	if err != nil {
		s.failPaper(ctx, paper, err)
		s.recordAudit(ctx, models.AuditActionPaperProcess, paper, client.Name(), "", 0, latency, err)
		return nil, services.WrapProviderError(err)
	}

	paper.MarkAsCompleted(resp.Structured)
	if err := s.repo.Update(ctx, paper); err != nil {
		return nil, services.WrapInternal("failed to store summary", err)
	}

	s.recordAudit(ctx, models.AuditActionPaperProcess, paper, resp.Provider, resp.Model, resp.Usage.TotalTokens, latency, nil)

	s.logger.Info("paper processed",
		zap.String("paper_id", paper.ID.String()),
		zap.Int("formulas", len(formulas)))
	return paper, nil
}

// Translation is the result of translating a paper
type Translation struct {
	PaperID    uuid.UUID `json:"paper_id"`
	TargetLang string    `json:"target_lang"`
	Markdown   string    `json:"markdown"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
}

// Translate translates a paper's markdown into the target language. Formula
// blocks are replaced with placeholders before translation and restored
// afterwards so the LaTeX survives intact.
func (s *Service) Translate(ctx context.Context, paperID uuid.UUID, targetLang string) (*Translation, error) {
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return nil, services.ErrInvalidLanguage
	}

	paper, err := s.Get(ctx, paperID)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.Client()
	if err != nil {
		return nil, services.WrapProviderError(err)
	}

	masked, blocks := maskFormulas(paper.Markdown)
	prompt := fmt.Sprintf(
		"Translate the following markdown document to %s. "+
			"Keep the markdown structure. Placeholders like [FORMULA_0] must be kept exactly as they are.\n\n%s",
		targetLang, masked)

	started := time.Now()
	resp, err := client.Complete(ctx, ai.CompletionRequest{
		Prompt:    prompt,
		MaxTokens: translateMaxTokens,
	})
	latency := time.Since(started)
	if err != nil {
		s.recordAudit(ctx, models.AuditActionPaperTranslate, paper, client.Name(), "", 0, latency, err)
		return nil, services.WrapProviderError(err)
	}

	s.recordAudit(ctx, models.AuditActionPaperTranslate, paper, resp.Provider, resp.Model, resp.Usage.TotalTokens, latency, nil)

	return &Translation{
		PaperID:    paper.ID,
		TargetLang: targetLang,
		Markdown:   restoreFormulas(strings.TrimSpace(resp.Text), blocks),
		Provider:   resp.Provider,
		Model:      resp.Model,
	}, nil
}

func (s *Service) failPaper(ctx context.Context, paper *models.ResearchPaper, cause error) {
	paper.MarkAsFailed(cause.Error())
	if err := s.repo.Update(ctx, paper); err != nil {
		s.logger.Error("failed to mark paper as failed",
			zap.String("paper_id", paper.ID.String()),
			zap.Error(err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action models.AuditAction, paper *models.ResearchPaper, provider, model string, tokens int, latency time.Duration, callErr error) {
	log := models.NewAuditLog(action, "research_paper").
		WithUser(paper.UserID).
		WithResource(paper.ID).
		WithRequestID(middleware.GetRequestIDFromContext(ctx)).
		WithProviderMetrics(provider, model, tokens, int(latency.Milliseconds()))
	if callErr != nil {
		log.WithError(callErr.Error())
	}
	s.audit.Record(log)
}
