// Package render turns a project snapshot into an output file. Jobs are
// queued in SQLite and processed one at a time by a polling runner; the
// actual encoding sits behind the Engine interface.
package render

import (
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

type Format string

const (
	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
	FormatGIF  Format = "gif"
)

// ValidFormat reports whether f is a supported output container.
func ValidFormat(f Format) bool {
	switch f {
	case FormatMP4, FormatWebM, FormatGIF:
		return true
	}
	return false
}

// Job is one render request. The project is snapshotted into the payload at
// submission time, so later edits do not affect a queued render.
type Job struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	Status     JobStatus `json:"status"`
	Format     Format    `json:"format"`
	Progress   int       `json:"progress"`
	OutputPath string    `json:"outputPath,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Snapshot *timeline.Project `json:"-"`
}

// IsTerminal reports whether the job can no longer change state.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
