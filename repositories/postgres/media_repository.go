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

// MediaRepository implements the repositories.MediaRepository interface
type MediaRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *DB, logger *zap.Logger) repositories.MediaRepository {
	return &MediaRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a media record
func (r *MediaRepository) Create(ctx context.Context, media *models.VisualMedia) error {
	query := `
		INSERT INTO visual_media (
			id, user_id, title, media_type, source_url, width, height, duration_seconds, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		media.ID,
		media.UserID,
		media.Title,
		media.MediaType,
		media.SourceURL,
		media.Width,
		media.Height,
		media.DurationSeconds,
		media.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}

	r.logger.Debug("media created", zap.String("id", media.ID.String()))
	return nil
}

// GetByID retrieves a media item by ID
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VisualMedia, error) {
	query := `
		SELECT id, user_id, title, media_type, source_url, width, height, duration_seconds, created_at
		FROM visual_media
		WHERE id = $1
	`

	media := &models.VisualMedia{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&media.ID,
		&media.UserID,
		&media.Title,
		&media.MediaType,
		&media.SourceURL,
		&media.Width,
		&media.Height,
		&media.DurationSeconds,
		&media.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	return media, nil
}

// GetByUserID retrieves media for a user with pagination, newest first
func (r *MediaRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.VisualMedia, error) {
	query := `
		SELECT id, user_id, title, media_type, source_url, width, height, duration_seconds, created_at
		FROM visual_media
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	var items []*models.VisualMedia
	for rows.Next() {
		media := &models.VisualMedia{}
		if err := rows.Scan(
			&media.ID,
			&media.UserID,
			&media.Title,
			&media.MediaType,
			&media.SourceURL,
			&media.Width,
			&media.Height,
			&media.DurationSeconds,
			&media.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, media)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media: %w", err)
	}

	return items, nil
}

// InsertAnalysis inserts an analysis record for a media item
func (r *MediaRepository) InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		INSERT INTO analysis_records (
			id, media_id, kind, labels, description, confidence, provider, model, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.MediaID,
		record.Kind,
		record.Labels,
		record.Description,
		record.Confidence,
		record.Provider,
		record.Model,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}

	r.logger.Debug("analysis record inserted",
		zap.String("media_id", record.MediaID.String()),
		zap.String("kind", record.Kind))
	return nil
}

// GetAnalyses retrieves analysis records for a media item, newest first
func (r *MediaRepository) GetAnalyses(ctx context.Context, mediaID uuid.UUID) ([]*models.AnalysisRecord, error) {
	query := `
		SELECT id, media_id, kind, labels, description, confidence, provider, model, created_at
		FROM analysis_records
		WHERE media_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis records: %w", err)
	}
	defer rows.Close()

	var records []*models.AnalysisRecord
	for rows.Next() {
		record := &models.AnalysisRecord{}
		// labels is NULL when the analysis produced none; scan through []byte
		var labels []byte
		if err := rows.Scan(
			&record.ID,
			&record.MediaID,
			&record.Kind,
			&labels,
			&record.Description,
			&record.Confidence,
			&record.Provider,
			&record.Model,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		record.Labels = labels
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis records: %w", err)
	}

	return records, nil
}
