package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaperStatus represents the processing state of a research paper
type PaperStatus string

const (
	PaperStatusPending    PaperStatus = "pending"
	PaperStatusProcessing PaperStatus = "processing"
	PaperStatusCompleted  PaperStatus = "completed"
	PaperStatusFailed     PaperStatus = "failed"
)

// ResearchPaper represents a markdown research document submitted for analysis
type ResearchPaper struct {
	ID       uuid.UUID   `json:"id" db:"id"`
	UserID   uuid.UUID   `json:"user_id" db:"user_id"`
	Title    string      `json:"title" db:"title"`
	Markdown string      `json:"markdown" db:"markdown"`
	Status   PaperStatus `json:"status" db:"status"`

	// Summary produced by structured-output analysis
	Summary json.RawMessage `json:"summary,omitempty" db:"summary"`

	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" db:"processed_at"`
}

// FormulaSnippet represents a LaTeX formula block extracted from a paper
type FormulaSnippet struct {
	ID            uuid.UUID `json:"id" db:"id"`
	PaperID       uuid.UUID `json:"paper_id" db:"paper_id"`
	LaTeX         string    `json:"latex" db:"latex"`
	LocationIndex int       `json:"location_index" db:"location_index"`
	Description   string    `json:"description,omitempty" db:"description"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// PaperSummary is the structured analysis payload for a processed paper
type PaperSummary struct {
	Abstract    string   `json:"abstract"`
	KeyFindings []string `json:"key_findings"`
	Keywords    []string `json:"keywords"`
}

// TableName returns the table name for the ResearchPaper model
func (ResearchPaper) TableName() string {
	return "research_papers"
}

// TableName returns the table name for the FormulaSnippet model
func (FormulaSnippet) TableName() string {
	return "formula_snippets"
}

// NewResearchPaper creates a new ResearchPaper instance
func NewResearchPaper(userID uuid.UUID, title, markdown string) *ResearchPaper {
	return &ResearchPaper{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Markdown:  markdown,
		Status:    PaperStatusPending,
		CreatedAt: time.Now(),
	}
}

// NewFormulaSnippet creates a new FormulaSnippet instance
func NewFormulaSnippet(paperID uuid.UUID, latex string, locationIndex int) *FormulaSnippet {
	return &FormulaSnippet{
		ID:            uuid.New(),
		PaperID:       paperID,
		LaTeX:         latex,
		LocationIndex: locationIndex,
		CreatedAt:     time.Now(),
	}
}

// MarkAsProcessing marks the paper as processing
func (p *ResearchPaper) MarkAsProcessing() {
	p.Status = PaperStatusProcessing
}

// MarkAsCompleted marks the paper as completed with its summary
func (p *ResearchPaper) MarkAsCompleted(summary json.RawMessage) {
	p.Status = PaperStatusCompleted
	p.Summary = summary
	p.ErrorMessage = nil
	now := time.Now()
	p.ProcessedAt = &now
}

// MarkAsFailed marks the paper as failed
func (p *ResearchPaper) MarkAsFailed(errorMessage string) {
	p.Status = PaperStatusFailed
	p.ErrorMessage = &errorMessage
	now := time.Now()
	p.ProcessedAt = &now
}
