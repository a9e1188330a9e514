package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCompletion     AuditAction = "ai_completion"
	AuditActionEmbedding      AuditAction = "ai_embedding"
	AuditActionChatMessage    AuditAction = "chat_message"
	AuditActionPaperProcess   AuditAction = "paper_process"
	AuditActionPaperTranslate AuditAction = "paper_translate"
	AuditActionMediaAnalyze   AuditAction = "media_analyze"
)

// AuditLog represents an audit trail entry for an AI operation
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	Action       AuditAction     `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"`
	RequestID    string          `json:"request_id" db:"request_id"`

	Provider     string  `json:"provider,omitempty" db:"provider"`
	Model        string  `json:"model,omitempty" db:"model"`
	TokensUsed   int     `json:"tokens_used,omitempty" db:"tokens_used"`
	LatencyMs    int     `json:"latency_ms,omitempty" db:"latency_ms"`
	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		CreatedAt:    time.Now(),
	}
}

// WithUser sets the user ID
func (a *AuditLog) WithUser(userID uuid.UUID) *AuditLog {
	a.UserID = &userID
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID uuid.UUID) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithDetails sets the details payload
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequestID sets the originating request ID
func (a *AuditLog) WithRequestID(requestID string) *AuditLog {
	a.RequestID = requestID
	return a
}

// WithProviderMetrics sets provider call metrics
func (a *AuditLog) WithProviderMetrics(provider, model string, tokensUsed, latencyMs int) *AuditLog {
	a.Provider = provider
	a.Model = model
	a.TokensUsed = tokensUsed
	a.LatencyMs = latencyMs
	return a
}

// WithError records a failed operation
func (a *AuditLog) WithError(errorMessage string) *AuditLog {
	a.ErrorMessage = &errorMessage
	return a
}
