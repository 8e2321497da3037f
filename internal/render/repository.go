package render

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

type Repository interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListJobsByProject(ctx context.Context, projectID string) ([]*Job, error)
	ListQueuedJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id string, status JobStatus, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	SetJobOutput(ctx context.Context, id, outputPath string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, job *Job) error {
	payload, err := json.Marshal(job.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal render snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO render_jobs (id, project_id, status, format, progress, output_path, error, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.ProjectID, string(job.Status), string(job.Format), job.Progress,
		nullString(job.OutputPath), nullString(job.Error), string(payload),
		job.CreatedAt.Format(time.RFC3339), job.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_id, status, format, progress, output_path, error, payload, created_at, updated_at
		FROM render_jobs WHERE id = ?
	`, id)
	return scanJob(row.Scan)
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, status, format, progress, output_path, error, payload, created_at, updated_at
		FROM render_jobs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteRepository) ListJobsByProject(ctx context.Context, projectID string) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, status, format, progress, output_path, error, payload, created_at, updated_at
		FROM render_jobs WHERE project_id = ? ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteRepository) ListQueuedJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, status, format, progress, output_path, error, payload, created_at, updated_at
		FROM render_jobs WHERE status = ? ORDER BY created_at ASC
	`, string(JobStatusQueued))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id string, status JobStatus, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE render_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, string(status), nullString(errorMsg), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE render_jobs SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) SetJobOutput(ctx context.Context, id, outputPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE render_jobs SET output_path = ?, updated_at = ? WHERE id = ?
	`, outputPath, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(scan func(dest ...any) error) (*Job, error) {
	var j Job
	var status, format string
	var outputPath, errorMsg sql.NullString
	var payload string
	var createdAt, updatedAt string

	err := scan(&j.ID, &j.ProjectID, &status, &format, &j.Progress, &outputPath, &errorMsg, &payload, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	j.Status = JobStatus(status)
	j.Format = Format(format)
	j.OutputPath = outputPath.String
	j.Error = errorMsg.String
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	if payload != "" {
		var p timeline.Project
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("unmarshal render snapshot %s: %w", j.ID, err)
		}
		p.Normalize()
		j.Snapshot = &p
	}
	return &j, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
