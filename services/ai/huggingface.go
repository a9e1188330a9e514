package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/daemonXid/daemon-one/config"
)

const (
	huggingFaceDefaultModel   = "mistralai/Mistral-7B-Instruct-v0.3"
	huggingFaceEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
)

// huggingFaceClient implements Client against the HuggingFace Inference API.
// Completions use the text-generation task, embeddings the feature-extraction
// pipeline; neither follows the OpenAI wire format.
type huggingFaceClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newHuggingFaceClient(settings config.ProviderSettings, httpClient *http.Client) *huggingFaceClient {
	model := settings.Model
	if model == "" {
		model = huggingFaceDefaultModel
	}
	return &huggingFaceClient{
		apiKey:     settings.APIKey,
		baseURL:    settings.BaseURL,
		model:      model,
		httpClient: httpClient,
	}
}

type hfGenerationRequest struct {
	Inputs     string                 `json:"inputs"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

type hfGenerationResult struct {
	GeneratedText string `json:"generated_text"`
}

type hfErrorResponse struct {
	Error string `json:"error"`
}

// Name returns the provider name
func (c *huggingFaceClient) Name() string {
	return config.ProviderHuggingFace
}

// Complete generates text via the HuggingFace text-generation task
func (c *huggingFaceClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	prompt := req.Prompt
	if req.Schema != nil {
		prompt = buildSchemaPrompt(prompt, req.Schema)
	}

	params := map[string]interface{}{
		"return_full_text": false,
	}
	if req.MaxTokens > 0 {
		params["max_new_tokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		params["temperature"] = *req.Temperature
	}

	body, err := c.post(ctx, c.baseURL+"/models/"+model, hfGenerationRequest{
		Inputs:     prompt,
		Parameters: params,
	})
	if err != nil {
		return nil, err
	}

	// Text-generation replies as a one-element array.
	var results []hfGenerationResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, NewProviderError(c.Name(), KindTransport, 0, "failed to decode response", err)
	}
	if len(results) == 0 {
		return nil, NewProviderError(c.Name(), KindTransport, 0, "response contained no generations", nil)
	}

	resp := &CompletionResponse{
		Text:     results[0].GeneratedText,
		Model:    model,
		Provider: c.Name(),
	}

	if req.Schema != nil {
		structured, err := extractJSON(resp.Text)
		if err != nil {
			return nil, NewProviderError(c.Name(), KindUnsupportedSchema, 0,
				fmt.Sprintf("structured output for schema %q could not be extracted", req.Schema.Name), err)
		}
		resp.Structured = structured
	}

	return resp, nil
}

// Embed generates a vector via the feature-extraction pipeline
func (c *huggingFaceClient) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := c.post(ctx,
		c.baseURL+"/pipeline/feature-extraction/"+huggingFaceEmbeddingModel,
		hfGenerationRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	// The pipeline returns either a flat vector or one vector per input.
	var vector []float64
	if err := json.Unmarshal(body, &vector); err == nil {
		return vector, nil
	}
	var vectors [][]float64
	if err := json.Unmarshal(body, &vectors); err != nil || len(vectors) == 0 {
		return nil, NewProviderError(c.Name(), KindTransport, 0, "failed to decode embedding response", err)
	}
	return vectors[0], nil
}

// Available reports whether a credential is configured
func (c *huggingFaceClient) Available() bool {
	return c.apiKey != ""
}

// post performs a single JSON POST against the Inference API. One attempt,
// no retries.
func (c *huggingFaceClient) post(ctx context.Context, url string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(c.Name(), KindTransport, 0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewProviderError(c.Name(), KindTransport, 0, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewProviderError(c.Name(), KindTransport, 0, "request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewProviderError(c.Name(), KindTransport, httpResp.StatusCode, "failed to read response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("upstream returned status %d", httpResp.StatusCode)
		var cause error
		var parsed hfErrorResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != "" {
			cause = errors.New(parsed.Error)
		}
		return nil, NewProviderError(c.Name(), classifyStatus(httpResp.StatusCode), httpResp.StatusCode, message, cause)
	}

	return respBody, nil
}
