package vision

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/models"
	"github.com/daemonXid/daemon-one/repositories"
	"github.com/daemonXid/daemon-one/services"
	"github.com/daemonXid/daemon-one/services/ai"
	"github.com/daemonXid/daemon-one/services/audit"
)

type fakeClient struct {
	name     string
	response *ai.CompletionResponse
	err      error

	lastRequest ai.CompletionRequest
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, ai.NewProviderError(f.name, ai.KindUnsupportedOperation, 0, "not implemented", nil)
}

func (f *fakeClient) Available() bool { return true }

type fakeClientSource struct {
	client ai.Client
	err    error
}

func (f *fakeClientSource) Client() (ai.Client, error) { return f.client, f.err }

type fakeMediaRepo struct {
	media    map[uuid.UUID]*models.VisualMedia
	analyses map[uuid.UUID][]*models.AnalysisRecord
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{
		media:    make(map[uuid.UUID]*models.VisualMedia),
		analyses: make(map[uuid.UUID][]*models.AnalysisRecord),
	}
}

func (f *fakeMediaRepo) Create(ctx context.Context, media *models.VisualMedia) error {
	f.media[media.ID] = media
	return nil
}

func (f *fakeMediaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.VisualMedia, error) {
	media, ok := f.media[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return media, nil
}

func (f *fakeMediaRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.VisualMedia, error) {
	var out []*models.VisualMedia
	for _, m := range f.media {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMediaRepo) InsertAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	f.analyses[record.MediaID] = append(f.analyses[record.MediaID], record)
	return nil
}

func (f *fakeMediaRepo) GetAnalyses(ctx context.Context, mediaID uuid.UUID) ([]*models.AnalysisRecord, error) {
	return f.analyses[mediaID], nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Insert(ctx context.Context, log *models.AuditLog) error { return nil }
func (fakeAuditRepo) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}
func (fakeAuditRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}

func newTestService(client ai.Client, repo repositories.MediaRepository) *Service {
	return NewService(
		&fakeClientSource{client: client},
		repo,
		audit.NewService(fakeAuditRepo{}, zap.NewNop()),
		zap.NewNop(),
	)
}

func TestRegisterValidatesMediaType(t *testing.T) {
	svc := newTestService(&fakeClient{name: "openrouter"}, newFakeMediaRepo())

	_, err := svc.Register(context.Background(), uuid.New(), "clip", "audio", "https://example.com/a.mp3")
	assert.True(t, services.IsValidationError(err))
}

func TestRegisterRequiresSourceURL(t *testing.T) {
	svc := newTestService(&fakeClient{name: "openrouter"}, newFakeMediaRepo())

	_, err := svc.Register(context.Background(), uuid.New(), "clip", models.MediaTypeImage, "  ")
	assert.True(t, services.IsValidationError(err))
}

func TestAnalyzePersistsRecord(t *testing.T) {
	structured := json.RawMessage(`{"description":"a cat on a sofa","labels":["cat","sofa"],"confidence":0.92}`)
	client := &fakeClient{
		name: "openrouter",
		response: &ai.CompletionResponse{
			Text:       string(structured),
			Structured: structured,
			Model:      "mistralai/mistral-7b-instruct",
			Provider:   "openrouter",
			Usage:      ai.Usage{TotalTokens: 64},
		},
	}
	repo := newFakeMediaRepo()
	svc := newTestService(client, repo)

	media, err := svc.Register(context.Background(), uuid.New(), "living room",
		models.MediaTypeImage, "https://example.com/cat.jpg")
	require.NoError(t, err)

	record, err := svc.Analyze(context.Background(), media.ID, "")
	require.NoError(t, err)

	assert.Equal(t, AnalysisKindScene, record.Kind)
	assert.Equal(t, "a cat on a sofa", record.Description)
	assert.InDelta(t, 0.92, record.Confidence, 0.001)
	assert.Equal(t, "openrouter", record.Provider)
	assert.JSONEq(t, `["cat","sofa"]`, string(record.Labels))

	// Schema-bound request with the media metadata in the prompt.
	require.NotNil(t, client.lastRequest.Schema)
	assert.Equal(t, "MediaAnalysis", client.lastRequest.Schema.Name)
	assert.Contains(t, client.lastRequest.Prompt, "https://example.com/cat.jpg")

	records, err := svc.Analyses(context.Background(), media.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAnalyzeMediaNotFound(t *testing.T) {
	svc := newTestService(&fakeClient{name: "openrouter"}, newFakeMediaRepo())

	_, err := svc.Analyze(context.Background(), uuid.New(), AnalysisKindScene)
	assert.True(t, services.IsNotFoundError(err))
}

func TestAnalyzeProviderFailure(t *testing.T) {
	client := &fakeClient{
		name: "openrouter",
		err:  ai.NewProviderError("openrouter", ai.KindAuth, 401, "bad key", nil),
	}
	repo := newFakeMediaRepo()
	svc := newTestService(client, repo)

	media, err := svc.Register(context.Background(), uuid.New(), "clip",
		models.MediaTypeVideo, "https://example.com/v.mp4")
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), media.ID, AnalysisKindScene)
	require.Error(t, err)
	assert.True(t, services.IsExternalError(err))
	assert.Empty(t, repo.analyses[media.ID])
}
