package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DeepSeek and OpenRouter both speak the OpenAI chat/embeddings wire format;
// the shared request plumbing lives here. Each adapter contributes its name,
// defaults and extra headers.

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// openAICompatClient carries the shared state for OpenAI-wire-format backends.
type openAICompatClient struct {
	name         string
	apiKey       string
	baseURL      string
	defaultModel string
	extraHeaders map[string]string
	httpClient   *http.Client
}

func (c *openAICompatClient) chatComplete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	prompt := req.Prompt
	if req.Schema != nil {
		prompt = buildSchemaPrompt(prompt, req.Schema)
	}

	body := chatCompletionRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = &req.MaxTokens
	}
	if req.Temperature != nil {
		body.Temperature = req.Temperature
	}

	respBody, err := c.post(ctx, c.baseURL+"/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, NewProviderError(c.name, KindTransport, 0, "failed to decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, NewProviderError(c.name, KindTransport, 0, "response contained no choices", nil)
	}

	resp := &CompletionResponse{
		Text:     parsed.Choices[0].Message.Content,
		Model:    parsed.Model,
		Provider: c.name,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}
	if resp.Model == "" {
		resp.Model = model
	}

	if req.Schema != nil {
		structured, err := extractJSON(resp.Text)
		if err != nil {
			return nil, NewProviderError(c.name, KindUnsupportedSchema, 0,
				fmt.Sprintf("structured output for schema %q could not be extracted", req.Schema.Name), err)
		}
		resp.Structured = structured
	}

	return resp, nil
}

func (c *openAICompatClient) embed(ctx context.Context, model, text string) ([]float64, error) {
	respBody, err := c.post(ctx, c.baseURL+"/embeddings", embeddingRequest{Model: model, Input: text})
	if err != nil {
		return nil, err
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, NewProviderError(c.name, KindTransport, 0, "failed to decode embedding response", err)
	}
	if len(parsed.Data) == 0 {
		return nil, NewProviderError(c.name, KindTransport, 0, "embedding response contained no data", nil)
	}
	return parsed.Data[0].Embedding, nil
}

// post performs a single JSON POST. Exactly one attempt: failures are
// classified and returned, never retried here.
func (c *openAICompatClient) post(ctx context.Context, url string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(c.name, KindTransport, 0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, NewProviderError(c.name, KindTransport, 0, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.extraHeaders {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewProviderError(c.name, KindTransport, 0, "request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewProviderError(c.name, KindTransport, httpResp.StatusCode, "failed to read response", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.errorFromStatus(httpResp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *openAICompatClient) errorFromStatus(statusCode int, body []byte) error {
	message := fmt.Sprintf("upstream returned status %d", statusCode)
	var cause error
	var parsed apiErrorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		cause = errors.New(parsed.Error.Message)
	}
	return NewProviderError(c.name, classifyStatus(statusCode), statusCode, message, cause)
}
