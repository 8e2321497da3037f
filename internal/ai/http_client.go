package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPClient talks to a real generation provider over its REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (c *HTTPClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	var result ImageResult
	if err := c.post(ctx, "/v1/images/generations", req, &result); err != nil {
		return nil, err
	}
	c.logger.Info("image generation succeeded", "provider", result.Provider)
	return &result, nil
}

func (c *HTTPClient) GenerateVideo(ctx context.Context, req VideoRequest) (*VideoJob, error) {
	var job VideoJob
	if err := c.post(ctx, "/v1/videos/generations", req, &job); err != nil {
		return nil, err
	}
	c.logger.Info("video generation submitted", "provider_job_id", job.ID)
	return &job, nil
}

func (c *HTTPClient) VideoStatus(ctx context.Context, jobID string) (*VideoJob, error) {
	url := fmt.Sprintf("%s/v1/videos/generations/%s", c.baseURL, jobID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GenerationError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var job VideoJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &job, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GenerationError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newJobID() string {
	return uuid.NewString()
}
