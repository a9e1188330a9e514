package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/daemonXid/daemon-one/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ChatMessageRepository handles chat message data operations
type ChatMessageRepository interface {
	// Insert inserts a chat message
	Insert(ctx context.Context, msg *models.ChatMessage) error

	// GetBySessionID retrieves messages for a session, oldest first
	GetBySessionID(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error)

	// GetByUserID retrieves messages for a user with pagination, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error)
}

// PaperRepository handles research paper data operations
type PaperRepository interface {
	// Create creates a paper record
	Create(ctx context.Context, paper *models.ResearchPaper) error

	// GetByID retrieves a paper by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.ResearchPaper, error)

	// GetByUserID retrieves papers for a user with pagination, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ResearchPaper, error)

	// Update persists status, summary and error fields
	Update(ctx context.Context, paper *models.ResearchPaper) error

	// InsertFormulas inserts the formula snippets extracted from a paper
	InsertFormulas(ctx context.Context, snippets []*models.FormulaSnippet) error

	// GetFormulas retrieves the formula snippets for a paper in location order
	GetFormulas(ctx context.Context, paperID uuid.UUID) ([]*models.FormulaSnippet, error)
}

// MediaRepository handles visual media data operations
type MediaRepository interface {
	// Create creates a media record
	Create(ctx context.Context, media *models.VisualMedia) error

	// GetByID retrieves a media item by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.VisualMedia, error)

	// GetByUserID retrieves media for a user with pagination, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.VisualMedia, error)

	// InsertAnalysis inserts an analysis record for a media item
	InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error

	// GetAnalyses retrieves analysis records for a media item, newest first
	GetAnalyses(ctx context.Context, mediaID uuid.UUID) ([]*models.AnalysisRecord, error)
}

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts an audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// List retrieves audit logs with pagination, newest first
	List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)

	// GetByUserID retrieves audit logs for a user with pagination, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	ChatMessages ChatMessageRepository
	Papers       PaperRepository
	Media        MediaRepository
	AuditLogs    AuditRepository
}
