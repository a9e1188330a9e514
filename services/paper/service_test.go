package paper

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

type fakePaperRepo struct {
	papers   map[uuid.UUID]*models.ResearchPaper
	formulas map[uuid.UUID][]*models.FormulaSnippet
}

func newFakePaperRepo() *fakePaperRepo {
	return &fakePaperRepo{
		papers:   make(map[uuid.UUID]*models.ResearchPaper),
		formulas: make(map[uuid.UUID][]*models.FormulaSnippet),
	}
}

func (f *fakePaperRepo) Create(ctx context.Context, paper *models.ResearchPaper) error {
	f.papers[paper.ID] = paper
	return nil
}

func (f *fakePaperRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ResearchPaper, error) {
	paper, ok := f.papers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *paper
	return &copied, nil
}

func (f *fakePaperRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.ResearchPaper, error) {
	var out []*models.ResearchPaper
	for _, p := range f.papers {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaperRepo) Update(ctx context.Context, paper *models.ResearchPaper) error {
	if _, ok := f.papers[paper.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *paper
	f.papers[paper.ID] = &copied
	return nil
}

func (f *fakePaperRepo) InsertFormulas(ctx context.Context, snippets []*models.FormulaSnippet) error {
	if len(snippets) == 0 {
		return nil
	}
	paperID := snippets[0].PaperID
	f.formulas[paperID] = append(f.formulas[paperID], snippets...)
	return nil
}

func (f *fakePaperRepo) GetFormulas(ctx context.Context, paperID uuid.UUID) ([]*models.FormulaSnippet, error) {
	return f.formulas[paperID], nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Insert(ctx context.Context, log *models.AuditLog) error { return nil }
func (fakeAuditRepo) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}
func (fakeAuditRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}

func newTestService(client ai.Client, repo repositories.PaperRepository) *Service {
	return NewService(
		&fakeClientSource{client: client},
		repo,
		audit.NewService(fakeAuditRepo{}, zap.NewNop()),
		zap.NewNop(),
	)
}

func TestProcessExtractsFormulasAndSummary(t *testing.T) {
	summary := json.RawMessage(`{"abstract":"short","key_findings":["x"],"keywords":["physics"]}`)
	client := &fakeClient{
		name: "deepseek",
		response: &ai.CompletionResponse{
			Text:       string(summary),
			Structured: summary,
			Model:      "deepseek-chat",
			Provider:   "deepseek",
			Usage:      ai.Usage{TotalTokens: 100},
		},
	}
	repo := newFakePaperRepo()
	svc := newTestService(client, repo)

	created, err := svc.Create(context.Background(), uuid.New(), "Relativity", sampleMarkdown)
	require.NoError(t, err)
	assert.Equal(t, models.PaperStatusPending, created.Status)

	processed, err := svc.Process(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaperStatusCompleted, processed.Status)
	assert.JSONEq(t, string(summary), string(processed.Summary))
	assert.NotNil(t, processed.ProcessedAt)

	// Schema goes out with the summary request.
	require.NotNil(t, client.lastRequest.Schema)
	assert.Equal(t, "PaperSummary", client.lastRequest.Schema.Name)

	snippets, err := svc.Formulas(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	assert.Equal(t, `E = mc^2`, snippets[0].LaTeX)
	assert.Equal(t, 0, snippets[0].LocationIndex)
	assert.Equal(t, 1, snippets[1].LocationIndex)
}

func TestProcessProviderFailureMarksFailed(t *testing.T) {
	client := &fakeClient{
		name: "deepseek",
		err:  ai.NewProviderError("deepseek", ai.KindTransport, 503, "upstream down", nil),
	}
	repo := newFakePaperRepo()
	svc := newTestService(client, repo)

	created, err := svc.Create(context.Background(), uuid.New(), "Doomed", "body without formulas")
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, services.IsExternalError(err))

	paper, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaperStatusFailed, paper.Status)
	require.NotNil(t, paper.ErrorMessage)
}

func TestProcessAlreadyProcessing(t *testing.T) {
	repo := newFakePaperRepo()
	svc := newTestService(&fakeClient{name: "deepseek"}, repo)

	created, err := svc.Create(context.Background(), uuid.New(), "Busy", "body")
	require.NoError(t, err)
	created.MarkAsProcessing()
	require.NoError(t, repo.Update(context.Background(), created))

	_, err = svc.Process(context.Background(), created.ID)
	assert.True(t, services.IsConflictError(err))
}

func TestProcessPaperNotFound(t *testing.T) {
	svc := newTestService(&fakeClient{name: "deepseek"}, newFakePaperRepo())

	_, err := svc.Process(context.Background(), uuid.New())
	assert.True(t, services.IsNotFoundError(err))
}

func TestCreateEmptyBody(t *testing.T) {
	svc := newTestService(&fakeClient{name: "deepseek"}, newFakePaperRepo())

	_, err := svc.Create(context.Background(), uuid.New(), "Empty", "  ")
	assert.True(t, services.IsValidationError(err))
}

func TestTranslateProtectsFormulas(t *testing.T) {
	client := &fakeClient{
		name: "deepseek",
		response: &ai.CompletionResponse{
			Text:     "# Relativité\n\n[FORMULA_0]\n\n[FORMULA_1]\n\nC'est tout.",
			Model:    "deepseek-chat",
			Provider: "deepseek",
		},
	}
	repo := newFakePaperRepo()
	svc := newTestService(client, repo)

	created, err := svc.Create(context.Background(), uuid.New(), "Relativity", sampleMarkdown)
	require.NoError(t, err)

	translation, err := svc.Translate(context.Background(), created.ID, "French")
	require.NoError(t, err)

	// Prompt carries placeholders, never raw LaTeX.
	assert.Contains(t, client.lastRequest.Prompt, "[FORMULA_0]")
	assert.NotContains(t, client.lastRequest.Prompt, "E = mc^2")

	// Result has the LaTeX restored.
	assert.Contains(t, translation.Markdown, "$$E = mc^2$$")
	assert.NotContains(t, translation.Markdown, "[FORMULA_")
	assert.Equal(t, "French", translation.TargetLang)
}

func TestTranslateMissingLanguage(t *testing.T) {
	svc := newTestService(&fakeClient{name: "deepseek"}, newFakePaperRepo())

	_, err := svc.Translate(context.Background(), uuid.New(), " ")
	assert.True(t, services.IsValidationError(err))
}
