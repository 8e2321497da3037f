// Package ai is the gateway to external media generation providers. The
// editor talks to the Client interface; the HTTP implementation calls a
// provider's REST API and the stub returns deterministic placeholders for
// offline development.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ImageRequest asks a provider to synthesize a still image.
type ImageRequest struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Style    string `json:"style,omitempty"`
}

// ImageResult is the provider's answer: a URL or data URI for the image.
type ImageResult struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// VideoRequest asks a provider to synthesize a short clip.
type VideoRequest struct {
	Prompt   string  `json:"prompt"`
	Provider string  `json:"provider,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// VideoJob tracks an asynchronous video generation on the provider side.
type VideoJob struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"` // pending, processing, completed, failed
	URL      string  `json:"url,omitempty"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}

// GenerationError carries the provider's HTTP failure detail.
type GenerationError struct {
	StatusCode int
	Body       string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx) are
// considered permanent.
func (e *GenerationError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Client is the provider contract the editor depends on.
type Client interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
	GenerateVideo(ctx context.Context, req VideoRequest) (*VideoJob, error)
	VideoStatus(ctx context.Context, jobID string) (*VideoJob, error)
}

// StubClient answers every request locally with placeholder media. Video
// generations complete on the first status poll. One instance is shared
// across concurrent request handlers, so the job map is mutex-guarded.
type StubClient struct {
	logger *slog.Logger
	mu     sync.Mutex
	jobs   map[string]*VideoJob
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger, jobs: make(map[string]*VideoJob)}
}

func (c *StubClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	c.logger.Info("ai stub: image generation requested", "prompt_len", len(req.Prompt))
	w, h := req.Width, req.Height
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}
	return &ImageResult{
		URL:      fmt.Sprintf("https://placehold.co/%dx%d", w, h),
		Provider: "stub",
	}, nil
}

func (c *StubClient) GenerateVideo(ctx context.Context, req VideoRequest) (*VideoJob, error) {
	c.logger.Info("ai stub: video generation requested", "prompt_len", len(req.Prompt))
	job := &VideoJob{ID: newJobID(), Status: "processing", Progress: 0}
	c.mu.Lock()
	c.jobs[job.ID] = job
	c.mu.Unlock()
	return &VideoJob{ID: job.ID, Status: job.Status}, nil
}

func (c *StubClient) VideoStatus(ctx context.Context, jobID string) (*VideoJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.jobs[jobID]
	if !ok {
		return nil, &GenerationError{StatusCode: 404, Body: "unknown job"}
	}
	job.Status = "completed"
	job.Progress = 100
	job.URL = "https://example.invalid/generated/" + jobID + ".mp4"
	return &VideoJob{ID: job.ID, Status: job.Status, URL: job.URL, Progress: job.Progress}, nil
}
