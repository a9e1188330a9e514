package ai

import (
	"context"
	"net/http"

	"github.com/daemonXid/daemon-one/config"
)

const (
	openRouterDefaultModel   = "mistralai/mistral-7b-instruct"
	openRouterEmbeddingModel = "openai/text-embedding-3-small"

	// OpenRouter attributes traffic through these headers.
	openRouterReferer = "https://github.com/daemonXid/daemon-one"
	openRouterTitle   = "DAEMON-ONE"
)

// openRouterClient implements Client for the OpenRouter API, an
// OpenAI-compatible aggregator with attribution headers.
type openRouterClient struct {
	compat openAICompatClient
}

func newOpenRouterClient(settings config.ProviderSettings, httpClient *http.Client) *openRouterClient {
	model := settings.Model
	if model == "" {
		model = openRouterDefaultModel
	}
	return &openRouterClient{
		compat: openAICompatClient{
			name:         config.ProviderOpenRouter,
			apiKey:       settings.APIKey,
			baseURL:      settings.BaseURL,
			defaultModel: model,
			extraHeaders: map[string]string{
				"HTTP-Referer": openRouterReferer,
				"X-Title":      openRouterTitle,
			},
			httpClient: httpClient,
		},
	}
}

// Name returns the provider name
func (c *openRouterClient) Name() string {
	return config.ProviderOpenRouter
}

// Complete generates a chat completion via the OpenRouter API
func (c *openRouterClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return c.compat.chatComplete(ctx, req)
}

// Embed generates an embedding through OpenRouter's hosted embedding models
func (c *openRouterClient) Embed(ctx context.Context, text string) ([]float64, error) {
	return c.compat.embed(ctx, openRouterEmbeddingModel, text)
}

// Available reports whether a credential is configured
func (c *openRouterClient) Available() bool {
	return c.compat.apiKey != ""
}
