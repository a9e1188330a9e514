// Package chat implements the project-aware chatbot.
package chat

import (
	"context"
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
	contextDocLimit   = 3
	answerMaxTokens   = 512
	answerTemperature = 0.2
)

// ClientSource supplies the active AI provider client
type ClientSource interface {
	Client() (ai.Client, error)
}

// Service answers questions about the platform using the knowledge base and
// the active AI provider.
type Service struct {
	clients ClientSource
	index   *Index
	repo    repositories.ChatMessageRepository
	audit   *audit.Service
	logger  *zap.Logger
}

// NewService creates a new chat service
func NewService(clients ClientSource, index *Index, repo repositories.ChatMessageRepository, auditSvc *audit.Service, logger *zap.Logger) *Service {
	return &Service{
		clients: clients,
		index:   index,
		repo:    repo,
		audit:   auditSvc,
		logger:  logger,
	}
}

// Answer is the result of one chatbot turn
type Answer struct {
	SessionID uuid.UUID           `json:"session_id"`
	Question  *models.ChatMessage `json:"question"`
	Reply     *models.ChatMessage `json:"reply"`
}

// Ask answers a question within a session. A zero sessionID starts a new
// session. Both the question and the reply are persisted.
func (s *Service) Ask(ctx context.Context, userID, sessionID uuid.UUID, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, services.ErrEmptyQuestion
	}
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	client, err := s.clients.Client()
	if err != nil {
		return nil, services.WrapProviderError(err)
	}

	contextDocs := s.index.Search(question, contextDocLimit)
	prompt := buildAnswerPrompt(question, contextDocs)

	temp := answerTemperature
	started := time.Now()
	resp, err := client.Complete(ctx, ai.CompletionRequest{
		Prompt:      prompt,
		Temperature: &temp,
		MaxTokens:   answerMaxTokens,
	})
	latency := time.Since(started)
	if err != nil {
		s.recordAudit(ctx, userID, nil, client.Name(), "", 0, latency, err)
		return nil, services.WrapProviderError(err)
	}

	userMsg := models.NewChatMessage(userID, sessionID, models.ChatRoleUser, question)
	reply := models.NewChatMessage(userID, sessionID, models.ChatRoleAssistant, strings.TrimSpace(resp.Text)).
		WithProviderMetrics(resp.Provider, resp.Model, resp.Usage.TotalTokens)

	if err := s.repo.Insert(ctx, userMsg); err != nil {
		return nil, services.WrapInternal("failed to store question", err)
	}
	if err := s.repo.Insert(ctx, reply); err != nil {
		return nil, services.WrapInternal("failed to store reply", err)
	}

	s.recordAudit(ctx, userID, &reply.ID, resp.Provider, resp.Model, resp.Usage.TotalTokens, latency, nil)

	return &Answer{
		SessionID: sessionID,
		Question:  userMsg,
		Reply:     reply,
	}, nil
}

// History retrieves the messages of a session, oldest first
func (s *Service) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	messages, err := s.repo.GetBySessionID(ctx, sessionID, limit)
	if err != nil {
		return nil, services.WrapInternal("failed to load chat history", err)
	}
	return messages, nil
}

func (s *Service) recordAudit(ctx context.Context, userID uuid.UUID, resourceID *uuid.UUID, provider, model string, tokens int, latency time.Duration, callErr error) {
	log := models.NewAuditLog(models.AuditActionChatMessage, "chat_message").
		WithUser(userID).
		WithRequestID(middleware.GetRequestIDFromContext(ctx)).
		WithProviderMetrics(provider, model, tokens, int(latency.Milliseconds()))
	if resourceID != nil {
		log.WithResource(*resourceID)
	}
	if callErr != nil {
		log.WithError(callErr.Error())
	}
	s.audit.Record(log)
}
