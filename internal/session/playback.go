package session

import (
	"context"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/playback"
)

// Play arms the transport and starts the tick loop. Any previously running
// loop for this session is cancelled first, so at most one advance loop
// exists per session at any time. The loop's advance runs under s.mu, the
// same lock every other transport operation holds.
func (s *Session) Play(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playCancel != nil {
		s.playCancel()
		s.playCancel = nil
	}

	s.tr.Play(s.now())
	s.state.IsPlaying = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.playCancel = cancel

	go playback.Run(loopCtx, func(now time.Time) bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		head, stopped := s.tr.Advance(now, s.project.TotalDuration())
		s.state.CurrentTime = head
		if stopped {
			s.state.IsPlaying = false
			s.playCancel = nil
		}
		return stopped
	})
}

// Pause stops the tick loop and freezes the playhead.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

func (s *Session) pauseLocked() {
	if s.playCancel != nil {
		s.playCancel()
		s.playCancel = nil
	}
	s.tr.Pause(s.now(), s.project.TotalDuration())
	s.state.IsPlaying = false
	s.state.CurrentTime = s.tr.Position(s.now(), s.project.TotalDuration())
}

// TogglePlay plays when paused and pauses when playing.
func (s *Session) TogglePlay(ctx context.Context) bool {
	s.mu.Lock()
	playing := s.tr.Playing()
	s.mu.Unlock()

	if playing {
		s.Pause()
		return false
	}
	s.Play(ctx)
	return true
}

// Seek moves the playhead to t seconds, clamped to the timeline, without
// changing the play/pause state.
func (s *Session) Seek(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.project.TotalDuration()
	s.tr.Seek(s.now(), t, total)
	s.state.CurrentTime = s.tr.Position(s.now(), total)
}

// SetSpeed switches the playback rate. Rates outside the allowed set are
// rejected.
func (s *Session) SetSpeed(speed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tr.SetSpeed(s.now(), speed, s.project.TotalDuration()) {
		return ErrInvalidSpeed
	}
	s.state.PlaybackSpeed = speed
	return nil
}

// SetLoop toggles wrap-at-end playback.
func (s *Session) SetLoop(loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr.SetLoop(s.now(), loop, s.project.TotalDuration())
	s.state.Loop = loop
}

// SetVolume sets the playback volume, clamped to [0,1].
func (s *Session) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr.SetVolume(v)
	s.state.Volume = s.tr.Volume()
}

// ToggleMute silences playback or restores the last non-zero volume.
func (s *Session) ToggleMute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr.ToggleMute()
	s.state.Volume = s.tr.Volume()
}

// StepFrame pauses playback and nudges the playhead by one frame at the
// project frame rate. dir is +1 or -1.
func (s *Session) StepFrame(dir int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tr.Playing() {
		s.pauseLocked()
	}
	s.tr.StepFrame(s.project.FPS, dir, s.project.TotalDuration())
	s.state.CurrentTime = s.tr.Position(s.now(), s.project.TotalDuration())
}

// Skip jumps the playhead by delta seconds, clamped to the timeline.
func (s *Session) Skip(delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tr.Skip(s.now(), delta, s.project.TotalDuration())
	s.state.CurrentTime = s.tr.Position(s.now(), s.project.TotalDuration())
}

// Close cancels any running playback loop. The session must not be used
// afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playCancel != nil {
		s.playCancel()
		s.playCancel = nil
	}
}
