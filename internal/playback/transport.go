// Package playback advances a virtual playhead over wall-clock time, scaled
// by playback speed, with loop and boundary semantics. The transport is
// driven cooperatively: an external tick loop calls Advance, nothing here
// blocks.
package playback

import "time"

// Speeds is the discrete set of allowed playback rates.
var Speeds = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 2}

// ValidSpeed reports whether s is one of the allowed playback rates.
func ValidSpeed(s float64) bool {
	for _, v := range Speeds {
		if v == s {
			return true
		}
	}
	return false
}

// Transport holds the playhead state. When playing it is anchored to a wall
// clock instant: playhead = anchorHead + (now - anchorWall) * speed. Pausing,
// seeking and speed changes re-anchor so the playhead never jumps.
type Transport struct {
	playing    bool
	head       float64
	anchorWall time.Time
	anchorHead float64
	speed      float64
	loop       bool
	volume     float64
	lastVolume float64
}

func NewTransport() *Transport {
	return &Transport{speed: 1, volume: 1, lastVolume: 1}
}

// Play arms the transport at the current playhead. Arming an already playing
// transport re-anchors it.
func (t *Transport) Play(now time.Time) {
	t.playing = true
	t.anchorWall = now
	t.anchorHead = t.head
}

// Pause freezes the playhead where Advance last left it.
func (t *Transport) Pause(now time.Time, total float64) {
	if t.playing {
		t.head, _ = t.Advance(now, total)
	}
	t.playing = false
}

// Advance computes the playhead for the given instant. When the candidate
// position reaches the end of the timeline it either wraps to zero (loop) or
// stops with the playhead clamped exactly to total, never overshooting.
// The returned bool reports whether playback stopped on this tick.
func (t *Transport) Advance(now time.Time, total float64) (float64, bool) {
	if !t.playing {
		return t.head, false
	}

	elapsed := now.Sub(t.anchorWall).Seconds() * t.speed
	candidate := t.anchorHead + elapsed

	if candidate >= total {
		if t.loop {
			t.head = 0
			t.anchorWall = now
			t.anchorHead = 0
			return 0, false
		}
		t.playing = false
		t.head = total
		return total, true
	}

	t.head = candidate
	return candidate, false
}

// Seek clamps the requested time to [0, total] and positions the playhead
// there without changing the play state. A playing transport is re-anchored.
func (t *Transport) Seek(now time.Time, target, total float64) {
	t.head = clamp(target, 0, total)
	t.anchorWall = now
	t.anchorHead = t.head
}

// Position returns the playhead without mutating anchors.
func (t *Transport) Position(now time.Time, total float64) float64 {
	if !t.playing {
		return t.head
	}
	candidate := t.anchorHead + now.Sub(t.anchorWall).Seconds()*t.speed
	return clamp(candidate, 0, total)
}

// SetSpeed re-anchors at the current playhead so the new rate takes effect
// immediately without a time jump. Invalid rates are ignored.
func (t *Transport) SetSpeed(now time.Time, speed, total float64) bool {
	if !ValidSpeed(speed) {
		return false
	}
	if t.playing {
		t.head, _ = t.Advance(now, total)
		t.anchorWall = now
		t.anchorHead = t.head
	}
	t.speed = speed
	return true
}

// SetLoop toggles looping, re-anchoring a playing transport so the boundary
// decision is made against a fresh anchor.
func (t *Transport) SetLoop(now time.Time, loop bool, total float64) {
	if t.playing {
		t.head, _ = t.Advance(now, total)
		t.anchorWall = now
		t.anchorHead = t.head
	}
	t.loop = loop
}

// StepFrame moves the playhead by dir frames of 1/fps seconds, clamped.
// dir is +1 or -1; the transport should be paused by the caller first.
func (t *Transport) StepFrame(fps int, dir int, total float64) {
	if fps <= 0 {
		fps = 30
	}
	t.head = clamp(t.head+float64(dir)/float64(fps), 0, total)
	t.anchorHead = t.head
}

// Skip moves the playhead by delta seconds (negative skips backward),
// clamped to the timeline bounds.
func (t *Transport) Skip(now time.Time, delta, total float64) {
	if t.playing {
		t.head, _ = t.Advance(now, total)
	}
	t.head = clamp(t.head+delta, 0, total)
	t.anchorWall = now
	t.anchorHead = t.head
}

// ToggleMute switches between silence and the last non-zero volume. The
// previously set level is preserved across a mute/unmute round trip.
func (t *Transport) ToggleMute() {
	if t.volume > 0 {
		t.lastVolume = t.volume
		t.volume = 0
		return
	}
	if t.lastVolume <= 0 {
		t.lastVolume = 1
	}
	t.volume = t.lastVolume
}

// SetVolume clamps to [0,1]. Non-zero levels are remembered for unmute.
func (t *Transport) SetVolume(v float64) {
	v = clamp(v, 0, 1)
	t.volume = v
	if v > 0 {
		t.lastVolume = v
	}
}

func (t *Transport) Playing() bool   { return t.playing }
func (t *Transport) Speed() float64  { return t.speed }
func (t *Transport) Loop() bool      { return t.loop }
func (t *Transport) Volume() float64 { return t.volume }
func (t *Transport) Muted() bool     { return t.volume == 0 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
