package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/repositories"
)

func TestMediaRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMediaRepository(db, zap.NewNop())

	media := models.NewVisualMedia(uuid.New(), "Street scene", models.MediaTypeImage, "https://example.com/street.jpg")

	mock.ExpectExec("INSERT INTO visual_media").
		WithArgs(media.ID, media.UserID, media.Title, media.MediaType, media.SourceURL,
			media.Width, media.Height, media.DurationSeconds, media.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), media)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRepositoryGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMediaRepository(db, zap.NewNop())

	id := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "media_type", "source_url", "width", "height", "duration_seconds", "created_at",
	}).AddRow(id, uuid.New(), "Street scene", "image", "https://example.com/street.jpg", 1920, 1080, 0.0, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM visual_media").
		WithArgs(id).
		WillReturnRows(rows)

	media, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, media.ID)
	assert.Equal(t, models.MediaTypeImage, media.MediaType)
	assert.Equal(t, 1920, media.Width)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMediaRepository(db, zap.NewNop())

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM visual_media").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	media, err := repo.GetByID(context.Background(), id)
	assert.Nil(t, media)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMediaRepositoryInsertAnalysis(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMediaRepository(db, zap.NewNop())

	record := models.NewAnalysisRecord(uuid.New(), "scene").
		WithResult("a cat on a sofa", []byte(`["cat","sofa"]`), 0.92).
		WithProvider("openrouter", "mistralai/mistral-7b-instruct")

	mock.ExpectExec("INSERT INTO analysis_records").
		WithArgs(record.ID, record.MediaID, record.Kind, record.Labels, record.Description,
			record.Confidence, record.Provider, record.Model, record.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.InsertAnalysis(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaRepositoryGetAnalyses(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMediaRepository(db, zap.NewNop())

	mediaID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "media_id", "kind", "labels", "description", "confidence", "provider", "model", "created_at",
	}).
		AddRow(uuid.New(), mediaID, "scene", []byte(`["cat"]`), "a cat", 0.9,
			"deepseek", "deepseek-chat", now).
		AddRow(uuid.New(), mediaID, "scene", nil, "an empty room", 0.4,
			"deepseek", "deepseek-chat", now)

	mock.ExpectQuery("SELECT (.+) FROM analysis_records").
		WithArgs(mediaID).
		WillReturnRows(rows)

	records, err := repo.GetAnalyses(context.Background(), mediaID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `["cat"]`, string(records[0].Labels))
	assert.Nil(t, records[1].Labels)
	assert.NoError(t, mock.ExpectationsWereMet())
}
