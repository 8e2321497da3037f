package render

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

// Queue accepts render submissions and drains them one at a time with a
// polling runner. Jobs survive restarts in SQLite; jobs interrupted mid-run
// are failed at startup by the db layer.
type Queue struct {
	repo         Repository
	engine       Engine
	logger       *slog.Logger
	exportsDir   string
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

func NewQueue(repo Repository, engine Engine, logger *slog.Logger, exportsDir string, pollInterval time.Duration) *Queue {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Queue{
		repo:         repo,
		engine:       engine,
		logger:       logger,
		exportsDir:   exportsDir,
		pollInterval: pollInterval,
	}
}

// Submit validates the snapshot and enqueues a job for it. The snapshot is
// deep-copied at submission, so the caller's project can keep changing.
func (q *Queue) Submit(ctx context.Context, p *timeline.Project, format Format) (*Job, error) {
	if !ValidFormat(format) {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err := ValidateSnapshot(p); err != nil {
		return nil, err
	}

	snapshot := p.Clone()
	now := time.Now().UTC()
	job := &Job{
		ID:        timeline.NewID(),
		ProjectID: p.ID,
		Status:    JobStatusQueued,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
		Snapshot:  &snapshot,
	}

	if err := q.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	q.logger.Info("render job queued", "job_id", job.ID, "project_id", p.ID, "format", format)
	return job, nil
}

// Start runs the polling loop until the context is cancelled. It is safe to
// call once; further calls are no-ops while the loop is alive.
func (q *Queue) Start(ctx context.Context) {
	if q.running.Swap(true) {
		return
	}

	q.logger.Info("render queue started", "poll_interval", q.pollInterval)

	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.logger.Info("render queue stopping")
			q.running.Store(false)
			return
		case <-ticker.C:
			if !q.paused.Load() {
				q.processNextJob(ctx)
			}
		}
	}
}

func (q *Queue) Pause()          { q.paused.Store(true) }
func (q *Queue) Resume()         { q.paused.Store(false) }
func (q *Queue) IsPaused() bool  { return q.paused.Load() }
func (q *Queue) IsRunning() bool { return q.running.Load() }

func (q *Queue) processNextJob(ctx context.Context) {
	jobs, err := q.repo.ListQueuedJobs(ctx)
	if err != nil {
		q.logger.Error("failed to list queued render jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	q.logger.Info("processing render job", "job_id", job.ID, "project_id", job.ProjectID)

	if job.Snapshot == nil {
		q.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, "missing project snapshot")
		return
	}

	if err := q.repo.UpdateJobStatus(ctx, job.ID, JobStatusActive, ""); err != nil {
		q.logger.Error("failed to mark job active", "job_id", job.ID, "error", err)
		return
	}

	outputPath := filepath.Join(q.exportsDir, job.ID+"."+string(job.Format))
	err = q.engine.Render(ctx, job.Snapshot, job.Format, outputPath, func(percent int) {
		q.repo.UpdateJobProgress(ctx, job.ID, percent)
	})
	if err != nil {
		q.logger.Error("render failed", "job_id", job.ID, "error", err)
		q.repo.UpdateJobStatus(ctx, job.ID, JobStatusFailed, err.Error())
		return
	}

	if err := q.repo.SetJobOutput(ctx, job.ID, outputPath); err != nil {
		q.logger.Error("failed to record output path", "job_id", job.ID, "error", err)
	}
	q.repo.UpdateJobProgress(ctx, job.ID, 100)
	q.repo.UpdateJobStatus(ctx, job.ID, JobStatusCompleted, "")
	q.logger.Info("render job completed", "job_id", job.ID, "output", outputPath)
}
