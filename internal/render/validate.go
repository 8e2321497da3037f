package render

import (
	"errors"
	"fmt"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

// ErrEmptyTimeline rejects renders of projects with no scenes.
var ErrEmptyTimeline = errors.New("project has no scenes to render")

// ValidateSnapshot checks that a project snapshot is renderable: at least one
// scene, positive durations, non-negative start times and trim bookkeeping
// that is consistent with the source duration.
func ValidateSnapshot(p *timeline.Project) error {
	if p == nil || len(p.Scenes) == 0 {
		return ErrEmptyTimeline
	}
	if p.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", p.FPS)
	}
	if p.Resolution.Width <= 0 || p.Resolution.Height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", p.Resolution.Width, p.Resolution.Height)
	}

	for i := range p.Scenes {
		s := &p.Scenes[i]
		if s.Duration <= 0 {
			return fmt.Errorf("scene %q has non-positive duration %g", s.ID, s.Duration)
		}
		if s.StartTime < 0 {
			return fmt.Errorf("scene %q has negative start time %g", s.ID, s.StartTime)
		}
		if s.TrimStart < 0 || s.TrimEnd < 0 {
			return fmt.Errorf("scene %q has negative trim", s.ID)
		}
		if s.OriginalDuration > 0 && s.TrimStart+s.Duration+s.TrimEnd > s.OriginalDuration+timeEpsilon {
			return fmt.Errorf("scene %q trims exceed source duration", s.ID)
		}
	}

	for i := range p.AudioTracks {
		t := &p.AudioTracks[i]
		if t.Duration <= 0 {
			return fmt.Errorf("audio track %q has non-positive duration %g", t.ID, t.Duration)
		}
		if t.StartTime < 0 {
			return fmt.Errorf("audio track %q has negative start time %g", t.ID, t.StartTime)
		}
	}

	return nil
}

const timeEpsilon = 1e-6
