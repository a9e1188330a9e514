package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daemonXid/daemon-one/config"
)

func TestHuggingFaceComplete(t *testing.T) {
	var gotPath string
	var gotBody hfGenerationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`[{"generated_text":"bonjour"}]`))
	}))
	defer server.Close()

	client := newHuggingFaceClient(config.ProviderSettings{
		APIKey:  "hf-key",
		BaseURL: server.URL,
	}, http.DefaultClient)

	maxTokens := 64
	temp := 0.2
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Prompt:      "translate hello to french",
		MaxTokens:   maxTokens,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, "bonjour", resp.Text)
	assert.Equal(t, "huggingface", resp.Provider)
	assert.Equal(t, huggingFaceDefaultModel, resp.Model)
	assert.Equal(t, "/models/"+huggingFaceDefaultModel, gotPath)
	assert.Equal(t, "translate hello to french", gotBody.Inputs)
	assert.Equal(t, false, gotBody.Parameters["return_full_text"])
	assert.EqualValues(t, 64, gotBody.Parameters["max_new_tokens"])
}

func TestHuggingFaceCompleteModelOverride(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"generated_text":"ok"}]`))
	}))
	defer server.Close()

	client := newHuggingFaceClient(config.ProviderSettings{
		APIKey:  "hf-key",
		BaseURL: server.URL,
	}, http.DefaultClient)

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Prompt: "ping",
		Model:  "google/gemma-2b",
	})
	require.NoError(t, err)
	assert.Equal(t, "google/gemma-2b", resp.Model)
	assert.Equal(t, "/models/google/gemma-2b", gotPath)
}

func TestHuggingFaceErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		check      func(error) bool
	}{
		{"invalid token", http.StatusUnauthorized, `{"error":"Authorization header is invalid"}`, IsAuthError},
		{"rate limited", http.StatusTooManyRequests, `{"error":"Rate limit reached"}`, IsRateLimitError},
		{"model loading", http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`, IsTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newHuggingFaceClient(config.ProviderSettings{
				APIKey:  "hf-key",
				BaseURL: server.URL,
			}, http.DefaultClient)

			_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "ping"})
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}

func TestHuggingFaceEmbed(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []float64
	}{
		{"flat vector", `[0.5,0.25]`, []float64{0.5, 0.25}},
		{"nested vector", `[[0.5,0.25]]`, []float64{0.5, 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/pipeline/feature-extraction/")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newHuggingFaceClient(config.ProviderSettings{
				APIKey:  "hf-key",
				BaseURL: server.URL,
			}, http.DefaultClient)

			vector, err := client.Embed(context.Background(), "embed me")
			require.NoError(t, err)
			assert.Equal(t, tt.want, vector)
		})
	}
}

func TestHuggingFaceStructuredOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text":"Here you go: {\"label\":\"cat\"} hope that helps"}]`))
	}))
	defer server.Close()

	client := newHuggingFaceClient(config.ProviderSettings{
		APIKey:  "hf-key",
		BaseURL: server.URL,
	}, http.DefaultClient)

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Prompt: "classify",
		Schema: &Schema{Name: "Label", Definition: json.RawMessage(`{"type":"object"}`)},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"cat"}`, string(resp.Structured))
}
