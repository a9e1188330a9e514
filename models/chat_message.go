package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole represents who authored a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage represents one turn of a chatbot conversation
type ChatMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	Role      ChatRole  `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`

	// Provider metadata, set on assistant turns
	Provider   string `json:"provider,omitempty" db:"provider"`
	Model      string `json:"model,omitempty" db:"model"`
	TokensUsed int    `json:"tokens_used,omitempty" db:"tokens_used"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// NewChatMessage creates a new ChatMessage instance
func NewChatMessage(userID, sessionID uuid.UUID, role ChatRole, content string) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// WithProviderMetrics sets provider metadata on an assistant turn
func (m *ChatMessage) WithProviderMetrics(provider, model string, tokensUsed int) *ChatMessage {
	m.Provider = provider
	m.Model = model
	m.TokensUsed = tokensUsed
	return m
}
