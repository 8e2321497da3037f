package api

import (
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/render"
	"github.com/EmrullahAydogan/video-studio/internal/session"
	"github.com/EmrullahAydogan/video-studio/internal/store"
	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State         string        `json:"state"`
	ProjectsCount int           `json:"projects_count"`
	OpenSessions  int           `json:"open_sessions"`
	RendersActive int           `json:"renders_active"`
	ActiveRender  *JobResponse  `json:"active_render,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
	Memory        *MemoryStatus `json:"memory,omitempty"`
}

type MemoryStatus struct {
	UsedPercent float64 `json:"used_percent"`
	TotalMB     uint64  `json:"total_mb"`
	AvailableMB uint64  `json:"available_mb"`
}

type CreateProjectRequest struct {
	Name     string `json:"name"`
	Template string `json:"template,omitempty"`
}

type RenameProjectRequest struct {
	Name string `json:"name"`
}

type DuplicateProjectRequest struct {
	Name string `json:"name,omitempty"`
}

type ProjectSummaryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	LastModified string `json:"lastModified"`
}

type ProjectListResponse struct {
	Projects []ProjectSummaryResponse `json:"projects"`
	Current  string                   `json:"currentProjectId,omitempty"`
}

// ProjectResponse is the project wire form plus the derived timeline length.
type ProjectResponse struct {
	timeline.Project
	TotalDuration float64 `json:"totalDuration"`
}

type SessionStateResponse struct {
	State         session.State `json:"state"`
	TotalDuration float64       `json:"totalDuration"`
	CanUndo       bool          `json:"canUndo"`
	CanRedo       bool          `json:"canRedo"`
}

type SceneResponse struct {
	Scene timeline.Scene `json:"scene"`
}

type AudioTrackResponse struct {
	AudioTrack timeline.AudioTrack `json:"audioTrack"`
}

type MarkerResponse struct {
	Marker timeline.Marker `json:"marker"`
}

type ReorderRequest struct {
	SceneIDs []string `json:"sceneIds"`
}

type SplitRequest struct {
	Time float64 `json:"time"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type SpeedRequest struct {
	Speed float64 `json:"speed"`
}

type LoopRequest struct {
	Loop bool `json:"loop"`
}

type VolumeRequest struct {
	Volume float64 `json:"volume"`
}

type ZoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type SkipRequest struct {
	Delta float64 `json:"delta"`
}

type StepRequest struct {
	Direction string `json:"direction"` // forward, backward
}

type SelectRequest struct {
	SceneID string `json:"sceneId"`
}

type SnappingRequest struct {
	Enabled     bool    `json:"enabled"`
	ThresholdPx float64 `json:"thresholdPx,omitempty"`
}

type SnapRequest struct {
	Time float64 `json:"time"`
}

type SnapResponse struct {
	Time    float64 `json:"time"`
	Snapped bool    `json:"snapped"`
	Source  string  `json:"source,omitempty"`
}

type RenderRequest struct {
	Format string `json:"format"`
}

type JobResponse struct {
	ID         string `json:"id"`
	ProjectID  string `json:"projectId"`
	Status     string `json:"status"`
	Format     string `json:"format"`
	Progress   int    `json:"progress"`
	OutputPath string `json:"outputPath,omitempty"`
	Error      string `json:"error,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToResponse(p timeline.Project) ProjectResponse {
	return ProjectResponse{Project: p, TotalDuration: p.TotalDuration()}
}

func SummaryToResponse(s store.Summary) ProjectSummaryResponse {
	return ProjectSummaryResponse{
		ID:           s.ID,
		Name:         s.Name,
		Thumbnail:    s.Thumbnail,
		LastModified: s.LastModified.Format(time.RFC3339),
	}
}

func JobToResponse(j *render.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		ProjectID:  j.ProjectID,
		Status:     string(j.Status),
		Format:     string(j.Format),
		Progress:   j.Progress,
		OutputPath: j.OutputPath,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.Format(time.RFC3339),
	}
}
