package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/repositories"
)

// PaperRepository implements the repositories.PaperRepository interface
type PaperRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPaperRepository creates a new paper repository
func NewPaperRepository(db *DB, logger *zap.Logger) repositories.PaperRepository {
	return &PaperRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a paper record
func (r *PaperRepository) Create(ctx context.Context, paper *models.ResearchPaper) error {
	query := `
		INSERT INTO research_papers (
			id, user_id, title, markdown, status, summary, error_message, created_at, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		paper.ID,
		paper.UserID,
		paper.Title,
		paper.Markdown,
		paper.Status,
		paper.Summary,
		paper.ErrorMessage,
		paper.CreatedAt,
		paper.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert paper: %w", err)
	}

	r.logger.Debug("paper created", zap.String("id", paper.ID.String()))
	return nil
}

// GetByID retrieves a paper by ID
func (r *PaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ResearchPaper, error) {
	query := `
		SELECT id, user_id, title, markdown, status, summary, error_message, created_at, processed_at
		FROM research_papers
		WHERE id = $1
	`

	// summary is NULL until processing completes; scan through []byte
	paper := &models.ResearchPaper{}
	var summary []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&paper.ID,
		&paper.UserID,
		&paper.Title,
		&paper.Markdown,
		&paper.Status,
		&summary,
		&paper.ErrorMessage,
		&paper.CreatedAt,
		&paper.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	paper.Summary = summary

	return paper, nil
}

// GetByUserID retrieves papers for a user with pagination, newest first
func (r *PaperRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ResearchPaper, error) {
	query := `
		SELECT id, user_id, title, markdown, status, summary, error_message, created_at, processed_at
		FROM research_papers
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	var papers []*models.ResearchPaper
	for rows.Next() {
		paper := &models.ResearchPaper{}
		var summary []byte
		if err := rows.Scan(
			&paper.ID,
			&paper.UserID,
			&paper.Title,
			&paper.Markdown,
			&paper.Status,
			&summary,
			&paper.ErrorMessage,
			&paper.CreatedAt,
			&paper.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		paper.Summary = summary
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate papers: %w", err)
	}

	return papers, nil
}

// Update persists status, summary and error fields
func (r *PaperRepository) Update(ctx context.Context, paper *models.ResearchPaper) error {
	query := `
		UPDATE research_papers
		SET status = $2, summary = $3, error_message = $4, processed_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		paper.ID,
		paper.Status,
		paper.Summary,
		paper.ErrorMessage,
		paper.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update paper: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

// InsertFormulas inserts the formula snippets extracted from a paper
func (r *PaperRepository) InsertFormulas(ctx context.Context, snippets []*models.FormulaSnippet) error {
	if len(snippets) == 0 {
		return nil
	}

	query := `
		INSERT INTO formula_snippets (id, paper_id, latex, location_index, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, s := range snippets {
		if _, err := r.db.ExecContext(ctx, query,
			s.ID, s.PaperID, s.LaTeX, s.LocationIndex, s.Description, s.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert formula snippet: %w", err)
		}
	}

	r.logger.Debug("formula snippets inserted",
		zap.String("paper_id", snippets[0].PaperID.String()),
		zap.Int("count", len(snippets)))
	return nil
}

// GetFormulas retrieves the formula snippets for a paper in location order
func (r *PaperRepository) GetFormulas(ctx context.Context, paperID uuid.UUID) ([]*models.FormulaSnippet, error) {
	query := `
		SELECT id, paper_id, latex, location_index, description, created_at
		FROM formula_snippets
		WHERE paper_id = $1
		ORDER BY location_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to query formula snippets: %w", err)
	}
	defer rows.Close()

	var snippets []*models.FormulaSnippet
	for rows.Next() {
		s := &models.FormulaSnippet{}
		if err := rows.Scan(&s.ID, &s.PaperID, &s.LaTeX, &s.LocationIndex, &s.Description, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan formula snippet: %w", err)
		}
		snippets = append(snippets, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate formula snippets: %w", err)
	}

	return snippets, nil
}
