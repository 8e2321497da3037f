// Package session holds the live editing state of one open project: the
// project itself, the ephemeral timeline state, the undo/redo log and the
// playback transport. Every mutation funnels through the session so history,
// auto-save and derived-duration recomputation stay consistent.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/history"
	"github.com/EmrullahAydogan/video-studio/internal/playback"
	"github.com/EmrullahAydogan/video-studio/internal/snap"
	"github.com/EmrullahAydogan/video-studio/internal/store"
	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

var (
	ErrSceneNotFound      = errors.New("scene not found")
	ErrAudioTrackNotFound = errors.New("audio track not found")
	ErrMarkerNotFound     = errors.New("marker not found")
	ErrInvalidSplitTime   = errors.New("split time must be inside the scene")
	ErrInvalidReorder     = errors.New("reorder requires a full permutation of scene ids")
	ErrInvalidDuration    = errors.New("scene duration must be positive")
	ErrInvalidSpeed       = errors.New("unsupported playback speed")
)

const (
	MinZoom = 10.0
	MaxZoom = 200.0

	DefaultZoom          = 50.0
	DefaultSnapThreshold = 10.0

	SkipShort = 5.0
	SkipLong  = 10.0
)

// State is the ephemeral, non-persisted timeline view state.
type State struct {
	Zoom            float64 `json:"zoom"` // pixels per second
	CurrentTime     float64 `json:"currentTime"`
	IsPlaying       bool    `json:"isPlaying"`
	SelectedSceneID string  `json:"selectedSceneId,omitempty"`
	PlaybackSpeed   float64 `json:"playbackSpeed"`
	Loop            bool    `json:"loop"`
	Volume          float64 `json:"volume"`
	SnappingEnabled bool    `json:"snappingEnabled"`
	SnapThreshold   float64 `json:"snapThreshold"` // pixels
}

// Session owns one project exclusively. Readers receive cloned views; all
// writes go through the mutation methods, which push a history snapshot and
// auto-save after every state-changing operation.
type Session struct {
	mu      sync.Mutex
	project timeline.Project
	state   State
	hist    *history.Log
	tr      *playback.Transport
	store   store.Store
	logger  *slog.Logger
	unsaved bool

	playCancel context.CancelFunc
	now        func() time.Time
}

// New wraps a project in a session. The initial project becomes the history
// baseline, so undoing every subsequent edit returns exactly here.
func New(p timeline.Project, st store.Store, logger *slog.Logger) *Session {
	s := &Session{
		project: p,
		state: State{
			Zoom:            DefaultZoom,
			PlaybackSpeed:   1,
			Volume:          1,
			SnappingEnabled: true,
			SnapThreshold:   DefaultSnapThreshold,
		},
		hist:   history.NewLog(history.DefaultLimit),
		tr:     playback.NewTransport(),
		store:  st,
		logger: logger,
		now:    time.Now,
	}
	s.hist.Reset(p)
	return s
}

// SetClock replaces the wall clock, for deterministic tests.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Project returns a deep copy of the current project.
func (s *Session) Project() timeline.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

// ProjectID returns the id of the owned project.
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.ID
}

// TotalDuration recomputes the timeline length from the scenes.
func (s *Session) TotalDuration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.TotalDuration()
}

// State returns the current timeline view state with a fresh playhead.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.CurrentTime = s.tr.Position(s.now(), s.project.TotalDuration())
	st.IsPlaying = s.tr.Playing()
	st.PlaybackSpeed = s.tr.Speed()
	st.Loop = s.tr.Loop()
	st.Volume = s.tr.Volume()
	return st
}

// UnsavedChanges reports whether an edit happened since the last explicit
// save acknowledgment.
func (s *Session) UnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsaved
}

// commit installs the mutated project, records it in history and auto-saves.
// Callers hold s.mu.
func (s *Session) commit(ctx context.Context, p timeline.Project) {
	s.project = p
	s.hist.Push(p)
	s.unsaved = true
	s.autosave(ctx)
}

func (s *Session) autosave(ctx context.Context) {
	if s.store == nil {
		return
	}
	saved := s.project.Clone()
	if err := s.store.Save(ctx, &saved); err != nil && s.logger != nil {
		s.logger.Error("auto-save failed", "project_id", s.project.ID, "error", err)
	}
}

// Rename updates the project name.
func (s *Session) Rename(ctx context.Context, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.project.Clone()
	p.Name = name
	p.UpdatedAt = time.Now().UTC()
	s.commit(ctx, p)
}

// AddScene appends a scene and returns it with its assigned id.
func (s *Session) AddScene(ctx context.Context, data timeline.Scene) (timeline.Scene, error) {
	if data.Duration <= 0 {
		return timeline.Scene{}, ErrInvalidDuration
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, added := s.project.AddScene(data)
	s.commit(ctx, p)
	return added, nil
}

// AppendScene is AddScene with startTime set to the current end of the
// timeline, the common append-at-end placement.
func (s *Session) AppendScene(ctx context.Context, data timeline.Scene) (timeline.Scene, error) {
	if data.Duration <= 0 {
		return timeline.Scene{}, ErrInvalidDuration
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data.StartTime = s.project.TotalDuration()
	p, added := s.project.AddScene(data)
	s.commit(ctx, p)
	return added, nil
}

// UpdateScene merges a partial update into the scene with the given id.
func (s *Session) UpdateScene(ctx context.Context, id string, u timeline.SceneUpdate) error {
	if u.Duration != nil && *u.Duration <= 0 {
		return ErrInvalidDuration
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.project.UpdateScene(id, u)
	if !ok {
		return ErrSceneNotFound
	}
	s.commit(ctx, p)
	return nil
}

// DeleteScene removes a scene. The timeline gap it leaves is preserved; the
// selection is cleared if it pointed at the deleted scene.
func (s *Session) DeleteScene(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.project.DeleteScene(id)
	if !ok {
		return ErrSceneNotFound
	}
	if s.state.SelectedSceneID == id {
		s.state.SelectedSceneID = ""
	}
	s.commit(ctx, p)
	return nil
}

// ReorderScenes applies a full permutation of the scene ids and repacks the
// track contiguously from zero.
func (s *Session) ReorderScenes(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.project.ReorderScenes(ids)
	if !ok {
		return ErrInvalidReorder
	}
	s.commit(ctx, p)
	return nil
}

// DuplicateScene clones a scene and returns the copy.
func (s *Session) DuplicateScene(ctx context.Context, id string) (timeline.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, dup, ok := s.project.DuplicateScene(id)
	if !ok {
		return timeline.Scene{}, ErrSceneNotFound
	}
	s.commit(ctx, p)
	return dup, nil
}

// SplitScene cuts a scene in two at splitTime seconds into the scene.
func (s *Session) SplitScene(ctx context.Context, id string, splitTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project.FindScene(id) < 0 {
		return ErrSceneNotFound
	}
	p, ok := s.project.SplitScene(id, splitTime)
	if !ok {
		return ErrInvalidSplitTime
	}
	if s.state.SelectedSceneID == id {
		s.state.SelectedSceneID = ""
	}
	s.commit(ctx, p)
	return nil
}

// AddAudioTrack appends an audio track and returns it with its assigned id.
func (s *Session) AddAudioTrack(ctx context.Context, data timeline.AudioTrack) (timeline.AudioTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, added := s.project.AddAudioTrack(data)
	s.commit(ctx, p)
	return added, nil
}

// UpdateAudioTrack merges a partial update into the track with the given id.
func (s *Session) UpdateAudioTrack(ctx context.Context, id string, u timeline.AudioTrackUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.project.UpdateAudioTrack(id, u)
	if !ok {
		return ErrAudioTrackNotFound
	}
	s.commit(ctx, p)
	return nil
}

// DeleteAudioTrack removes the track with the given id.
func (s *Session) DeleteAudioTrack(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.project.DeleteAudioTrack(id)
	if !ok {
		return ErrAudioTrackNotFound
	}
	s.commit(ctx, p)
	return nil
}

// DuplicateAudioTrack clones the track with the given id.
func (s *Session) DuplicateAudioTrack(ctx context.Context, id string) (timeline.AudioTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, dup, ok := s.project.DuplicateAudioTrack(id)
	if !ok {
		return timeline.AudioTrack{}, ErrAudioTrackNotFound
	}
	s.commit(ctx, p)
	return dup, nil
}

// AddMarker inserts a marker; the marker set stays sorted by time.
func (s *Session) AddMarker(ctx context.Context, data timeline.Marker) (timeline.Marker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, added := s.project.AddMarker(data)
	s.commit(ctx, p)
	return added, nil
}

// UpdateMarker merges a partial update into the marker with the given id.
func (s *Session) UpdateMarker(ctx context.Context, id string, u timeline.MarkerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.project.UpdateMarker(id, u)
	if !ok {
		return ErrMarkerNotFound
	}
	s.commit(ctx, p)
	return nil
}

// DeleteMarker removes the marker with the given id.
func (s *Session) DeleteMarker(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.project.DeleteMarker(id)
	if !ok {
		return ErrMarkerNotFound
	}
	s.commit(ctx, p)
	return nil
}

// JumpToMarker seeks the playhead to the marker's time.
func (s *Session) JumpToMarker(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.project.FindMarker(id)
	if idx < 0 {
		return ErrMarkerNotFound
	}
	total := s.project.TotalDuration()
	s.tr.Seek(s.now(), s.project.Markers[idx].Time, total)
	s.state.CurrentTime = s.tr.Position(s.now(), total)
	return nil
}

// Undo steps the project back one history entry. It repositions the history
// cursor without creating a new entry.
func (s *Session) Undo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.project = p
	s.unsaved = true
	s.autosave(ctx)
	return true
}

// Redo steps the project forward one history entry.
func (s *Session) Redo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.project = p
	s.unsaved = true
	s.autosave(ctx)
	return true
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// SelectScene records the selection. The id is a weak reference: it is
// validated here and re-resolved again at every point of use.
func (s *Session) SelectScene(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" && s.project.FindScene(id) < 0 {
		return ErrSceneNotFound
	}
	s.state.SelectedSceneID = id
	return nil
}

// SelectedScene re-resolves the selected scene id. The second return is
// false when nothing is selected or the selection dangles after a delete.
func (s *Session) SelectedScene() (timeline.Scene, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.SelectedSceneID == "" {
		return timeline.Scene{}, false
	}
	idx := s.project.FindScene(s.state.SelectedSceneID)
	if idx < 0 {
		return timeline.Scene{}, false
	}
	return s.project.Scenes[idx].Clone(), true
}

// Snap resolves a requested time against the current snap configuration.
func (s *Session) Snap(t float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snap.Resolve(t, &s.project, snap.Config{
		Enabled:     s.state.SnappingEnabled,
		ThresholdPx: s.state.SnapThreshold,
		Zoom:        s.state.Zoom,
	})
}

// SetSnapping toggles snapping and optionally adjusts the pixel threshold.
func (s *Session) SetSnapping(enabled bool, thresholdPx float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SnappingEnabled = enabled
	if thresholdPx > 0 {
		s.state.SnapThreshold = thresholdPx
	}
}

// SetZoom clamps the zoom to [MinZoom, MaxZoom] pixels per second.
func (s *Session) SetZoom(z float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	s.state.Zoom = z
}
