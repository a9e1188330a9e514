package ai

import (
	"context"
	"net/http"

	"github.com/daemonXid/daemon-one/config"
)

const deepSeekDefaultModel = "deepseek-chat"

// deepSeekClient implements Client for the DeepSeek API. The API is
// OpenAI-compatible for chat but offers no embedding endpoint.
type deepSeekClient struct {
	compat openAICompatClient
}

func newDeepSeekClient(settings config.ProviderSettings, httpClient *http.Client) *deepSeekClient {
	model := settings.Model
	if model == "" {
		model = deepSeekDefaultModel
	}
	return &deepSeekClient{
		compat: openAICompatClient{
			name:         config.ProviderDeepSeek,
			apiKey:       settings.APIKey,
			baseURL:      settings.BaseURL,
			defaultModel: model,
			httpClient:   httpClient,
		},
	}
}

// Name returns the provider name
func (c *deepSeekClient) Name() string {
	return config.ProviderDeepSeek
}

// Complete generates a chat completion via the DeepSeek API
func (c *deepSeekClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return c.compat.chatComplete(ctx, req)
}

// Embed is not offered by DeepSeek.
func (c *deepSeekClient) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, NewProviderError(c.Name(), KindUnsupportedOperation, 0,
		"deepseek does not provide an embedding API", nil)
}

// Available reports whether a credential is configured
func (c *deepSeekClient) Available() bool {
	return c.compat.apiKey != ""
}
