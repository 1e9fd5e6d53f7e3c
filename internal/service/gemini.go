package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ghid/internal/config"
)

// GeminiClient handles calls to the hosted text-generation API. One
// request per turn, no retry, no streaming; the timeout comes from the
// transport configuration.
type GeminiClient struct {
	config     *config.GeminiConfig
	httpClient *http.Client
}

// NewGeminiClient creates a new client for the generation API
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *GeminiClient) IsEnabled() bool {
	return c.config.Enabled
}

// Part is a single text fragment of a content block
type Part struct {
	Text string `json:"text"`
}

// Content is a role-tagged list of parts
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig carries sampling controls
type GenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

// GenerateContentRequest is the generation request body
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// SafetyRating is per-category safety metadata attached to a candidate
type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

// Candidate is one generated answer
type Candidate struct {
	Content       Content        `json:"content"`
	FinishReason  string         `json:"finishReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// GenerateContentResponse is the generation response body. On failure
// the server returns the error object instead of candidates.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
	Error      *APIErrBody `json:"error,omitempty"`
}

// APIErrBody is the server-side error object
type APIErrBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// APIStatusError is returned for non-2xx responses, carrying the HTTP
// status code and the server-provided message.
type APIStatusError struct {
	StatusCode int
	Message    string
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// EmptyGenerationError is returned when the request succeeded but no
// usable text came back, possibly because the content was blocked.
type EmptyGenerationError struct {
	SafetyRatings []SafetyRating
}

func (e *EmptyGenerationError) Error() string {
	if len(e.SafetyRatings) > 0 {
		ratings, _ := json.Marshal(e.SafetyRatings)
		return fmt.Sprintf("empty generation (safety ratings: %s)", ratings)
	}
	return "empty generation"
}

// GenerateContent submits a single user prompt and returns the
// generated text. Errors are typed so callers can map them onto
// user-visible messages: *APIStatusError for non-2xx responses,
// *EmptyGenerationError for blocked or empty output, and wrapped
// transport errors for everything else.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if !c.config.Enabled {
		return "", fmt.Errorf("generation API is not enabled (missing API key)")
	}

	req := GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: &GenerationConfig{
			Temperature: c.config.Temperature,
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	// The API authenticates via a query-string key
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.config.APIBase, c.config.Model, c.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result GenerateContentResponse
	if err := json.Unmarshal(body, &result); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("unknown HTTP error: %s", resp.Status)
		if result.Error != nil && result.Error.Message != "" {
			message = result.Error.Message
		}
		return "", &APIStatusError{StatusCode: resp.StatusCode, Message: message}
	}

	// Generated text lives at candidates[0].content.parts[0].text
	if len(result.Candidates) > 0 {
		cand := result.Candidates[0]
		if len(cand.Content.Parts) > 0 && cand.Content.Parts[0].Text != "" {
			return cand.Content.Parts[0].Text, nil
		}
		return "", &EmptyGenerationError{SafetyRatings: cand.SafetyRatings}
	}

	return "", &EmptyGenerationError{}
}

// batchEmbedRequest is the batch embedding request body
type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content Content `json:"content"`
}

// batchEmbedResponse is the batch embedding response body
type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
	Error *APIErrBody `json:"error,omitempty"`
}

// CreateEmbeddings generates embeddings for the given texts, processing
// them in batches with a small delay in between.
func (c *GeminiClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("generation API is not enabled (missing API key)")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batchSize := c.config.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := c.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d: %w", i/batchSize, err)
		}
		all = append(all, embeddings...)

		if end < len(texts) {
			time.Sleep(100 * time.Millisecond)
		}
	}
	return all, nil
}

// embedBatch embeds a single batch of texts
func (c *GeminiClient) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := batchEmbedRequest{
		Requests: make([]embedRequest, 0, len(texts)),
	}
	for _, text := range texts {
		req.Requests = append(req.Requests, embedRequest{
			Model:   "models/" + c.config.EmbeddingModel,
			Content: Content{Parts: []Part{{Text: text}}},
		})
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", c.config.APIBase, c.config.EmbeddingModel, c.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result batchEmbedResponse
	if err := json.Unmarshal(body, &result); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("unknown HTTP error: %s", resp.Status)
		if result.Error != nil && result.Error.Message != "" {
			message = result.Error.Message
		}
		return nil, &APIStatusError{StatusCode: resp.StatusCode, Message: message}
	}

	embeddings := make([][]float32, 0, len(result.Embeddings))
	for _, item := range result.Embeddings {
		embeddings = append(embeddings, item.Values)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d embeddings", len(texts), len(embeddings))
	}
	return embeddings, nil
}
