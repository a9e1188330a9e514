package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/repositories"
)

// ChatMessageRepository implements the repositories.ChatMessageRepository interface
type ChatMessageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewChatMessageRepository creates a new chat message repository
func NewChatMessageRepository(db *DB, logger *zap.Logger) repositories.ChatMessageRepository {
	return &ChatMessageRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a chat message
func (r *ChatMessageRepository) Insert(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (
			id, user_id, session_id, role, content, provider, model, tokens_used, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.SessionID,
		msg.Role,
		msg.Content,
		msg.Provider,
		msg.Model,
		msg.TokensUsed,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	r.logger.Debug("chat message inserted",
		zap.String("id", msg.ID.String()),
		zap.String("role", string(msg.Role)))
	return nil
}

// GetBySessionID retrieves messages for a session, oldest first
func (r *ChatMessageRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, user_id, session_id, role, content, provider, model, tokens_used, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	return r.queryMessages(ctx, query, sessionID, limit)
}

// GetByUserID retrieves messages for a user with pagination, newest first
func (r *ChatMessageRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, user_id, session_id, role, content, provider, model, tokens_used, created_at
		FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryMessages(ctx, query, userID, limit, offset)
}

func (r *ChatMessageRepository) queryMessages(ctx context.Context, query string, args ...interface{}) ([]*models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		msg := &models.ChatMessage{}
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.SessionID,
			&msg.Role,
			&msg.Content,
			&msg.Provider,
			&msg.Model,
			&msg.TokensUsed,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return messages, nil
}
