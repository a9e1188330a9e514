package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/middleware"
	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/services/ai"
	"github.com/daemonXid/daemon-one/services/audit"
	"github.com/daemonXid/daemon-one/services/chat"
)

type fakeAIClient struct {
	name     string
	response *ai.CompletionResponse
	err      error
}

func (f *fakeAIClient) Name() string { return f.name }

func (f *fakeAIClient) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, ai.NewProviderError(f.name, ai.KindUnsupportedOperation, 0, "not implemented", nil)
}

func (f *fakeAIClient) Available() bool { return true }

type fakeClientSource struct {
	client ai.Client
	err    error
}

func (f *fakeClientSource) Client() (ai.Client, error) { return f.client, f.err }

type fakeMessageRepo struct {
	messages []*models.ChatMessage
}

func (f *fakeMessageRepo) Insert(ctx context.Context, msg *models.ChatMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessageRepo) GetBySessionID(ctx context.Context, sessionID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ChatMessage, error) {
	return f.messages, nil
}

func newChatHandler(client ai.Client, repo *fakeMessageRepo) *ChatHandler {
	logger := zap.NewNop()
	svc := chat.NewService(
		&fakeClientSource{client: client},
		chat.NewIndex(chat.DefaultKnowledgeBase()),
		repo,
		audit.NewService(fakeAuditRepo{}, logger),
		logger,
	)
	return NewChatHandler(svc, logger)
}

func authedRequest(method, target string, body *strings.Reader, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := middleware.WithUserID(req.Context(), userID)
	return req.WithContext(ctx)
}

func TestHandleAsk(t *testing.T) {
	t.Run("answers and persists the exchange", func(t *testing.T) {
		client := &fakeAIClient{
			name: "deepseek",
			response: &ai.CompletionResponse{
				Text:     "You can upload papers as markdown.",
				Model:    "deepseek-chat",
				Provider: "deepseek",
			},
		}
		repo := &fakeMessageRepo{}
		handler := newChatHandler(client, repo)

		body := strings.NewReader(`{"question": "how do I upload papers?"}`)
		req := authedRequest(http.MethodPost, "/api/v1/chat/messages", body, uuid.New())
		w := httptest.NewRecorder()

		handler.HandleAsk(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		data := response["data"].(map[string]interface{})
		reply := data["reply"].(map[string]interface{})
		assert.Equal(t, "You can upload papers as markdown.", reply["content"])
		assert.NotEmpty(t, data["session_id"])

		// User turn plus assistant turn.
		assert.Len(t, repo.messages, 2)
	})

	t.Run("rejects an empty question", func(t *testing.T) {
		handler := newChatHandler(&fakeAIClient{name: "deepseek"}, &fakeMessageRepo{})

		body := strings.NewReader(`{"question": ""}`)
		req := authedRequest(http.MethodPost, "/api/v1/chat/messages", body, uuid.New())
		w := httptest.NewRecorder()

		handler.HandleAsk(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a malformed session id", func(t *testing.T) {
		handler := newChatHandler(&fakeAIClient{name: "deepseek"}, &fakeMessageRepo{})

		body := strings.NewReader(`{"question": "hi", "session_id": "not-a-uuid"}`)
		req := authedRequest(http.MethodPost, "/api/v1/chat/messages", body, uuid.New())
		w := httptest.NewRecorder()

		handler.HandleAsk(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider misconfiguration maps to service unavailable", func(t *testing.T) {
		logger := zap.NewNop()
		svc := chat.NewService(
			&fakeClientSource{err: &ai.ConfigurationError{Provider: "deepseek", Reason: "DEEPSEEK_API_KEY is not set"}},
			chat.NewIndex(chat.DefaultKnowledgeBase()),
			&fakeMessageRepo{},
			audit.NewService(fakeAuditRepo{}, logger),
			logger,
		)
		handler := NewChatHandler(svc, logger)

		body := strings.NewReader(`{"question": "hi"}`)
		req := authedRequest(http.MethodPost, "/api/v1/chat/messages", body, uuid.New())
		w := httptest.NewRecorder()

		handler.HandleAsk(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleHistory(t *testing.T) {
	t.Run("returns messages for a session", func(t *testing.T) {
		sessionID := uuid.New()
		repo := &fakeMessageRepo{}
		repo.messages = append(repo.messages,
			models.NewChatMessage(uuid.New(), sessionID, models.ChatRoleUser, "hello"))

		handler := newChatHandler(&fakeAIClient{name: "deepseek"}, repo)

		req := authedRequest(http.MethodGet, "/api/v1/chat/messages?session_id="+sessionID.String(), nil, uuid.New())
		w := httptest.NewRecorder()

		handler.HandleHistory(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)

		data := response["data"].([]interface{})
		assert.Len(t, data, 1)
	})

	t.Run("requires a session id", func(t *testing.T) {
		handler := newChatHandler(&fakeAIClient{name: "deepseek"}, &fakeMessageRepo{})

		req := authedRequest(http.MethodGet, "/api/v1/chat/messages", nil, uuid.New())
		w := httptest.NewRecorder()

		handler.HandleHistory(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
