package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MediaType represents the kind of visual media
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// VisualMedia represents an image or video registered for analysis
type VisualMedia struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	MediaType MediaType `json:"media_type" db:"media_type"`
	SourceURL string    `json:"source_url" db:"source_url"`

	Width           int     `json:"width,omitempty" db:"width"`
	Height          int     `json:"height,omitempty" db:"height"`
	DurationSeconds float64 `json:"duration_seconds,omitempty" db:"duration_seconds"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AnalysisRecord represents one analysis result for a media item
type AnalysisRecord struct {
	ID      uuid.UUID `json:"id" db:"id"`
	MediaID uuid.UUID `json:"media_id" db:"media_id"`
	Kind    string    `json:"kind" db:"kind"`

	Labels      json.RawMessage `json:"labels,omitempty" db:"labels"`
	Description string          `json:"description" db:"description"`
	Confidence  float64         `json:"confidence" db:"confidence"`

	Provider  string    `json:"provider" db:"provider"`
	Model     string    `json:"model" db:"model"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the VisualMedia model
func (VisualMedia) TableName() string {
	return "visual_media"
}

// TableName returns the table name for the AnalysisRecord model
func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// NewVisualMedia creates a new VisualMedia instance
func NewVisualMedia(userID uuid.UUID, title string, mediaType MediaType, sourceURL string) *VisualMedia {
	return &VisualMedia{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		MediaType: mediaType,
		SourceURL: sourceURL,
		CreatedAt: time.Now(),
	}
}

// NewAnalysisRecord creates a new AnalysisRecord instance
func NewAnalysisRecord(mediaID uuid.UUID, kind string) *AnalysisRecord {
	return &AnalysisRecord{
		ID:        uuid.New(),
		MediaID:   mediaID,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
}

// WithResult sets the analysis outcome
func (r *AnalysisRecord) WithResult(description string, labels json.RawMessage, confidence float64) *AnalysisRecord {
	r.Description = description
	r.Labels = labels
	r.Confidence = confidence
	return r
}

// WithProvider sets the provider metadata
func (r *AnalysisRecord) WithProvider(provider, model string) *AnalysisRecord {
	r.Provider = provider
	r.Model = model
	return r
}
