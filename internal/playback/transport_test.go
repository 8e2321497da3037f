package playback

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func at(seconds float64) time.Time {
	return t0.Add(time.Duration(seconds * float64(time.Second)))
}

func TestAdvance_PlayheadFollowsWallClock(t *testing.T) {
	tr := NewTransport()
	tr.Play(at(0))

	head, stopped := tr.Advance(at(2.5), 10)
	if stopped {
		t.Fatal("stopped mid-timeline")
	}
	if head != 2.5 {
		t.Fatalf("head = %g, want 2.5", head)
	}
}

func TestAdvance_StopsClampedExactlyAtTotal(t *testing.T) {
	tr := NewTransport()
	tr.Play(at(0))

	head, stopped := tr.Advance(at(12), 10)
	if !stopped {
		t.Fatal("did not stop at the boundary")
	}
	if head != 10 {
		t.Fatalf("head = %g, want exactly total (10), never past it", head)
	}
	if tr.Playing() {
		t.Fatal("still playing after boundary stop")
	}
}

func TestAdvance_LoopWrapsToZero(t *testing.T) {
	tr := NewTransport()
	tr.SetLoop(at(0), true, 10)
	tr.Play(at(0))

	head, stopped := tr.Advance(at(11), 10)
	if stopped {
		t.Fatal("loop stopped at the boundary")
	}
	if head != 0 {
		t.Fatalf("head = %g, want 0 after wrap", head)
	}
	if !tr.Playing() {
		t.Fatal("not playing after wrap")
	}

	// Playback continues from the wrap anchor.
	head, _ = tr.Advance(at(13), 10)
	if head != 2 {
		t.Fatalf("head = %g, want 2 after wrap", head)
	}
}

func TestSetSpeed_ReanchorsWithoutJump(t *testing.T) {
	tr := NewTransport()
	tr.Play(at(0))
	tr.Advance(at(4), 100)

	if !tr.SetSpeed(at(4), 2, 100) {
		t.Fatal("valid speed rejected")
	}

	// 4s at 1x, then 3s at 2x: 4 + 6 = 10.
	head, _ := tr.Advance(at(7), 100)
	if head != 10 {
		t.Fatalf("head = %g, want 10", head)
	}
}

func TestSetSpeed_RejectsArbitraryRates(t *testing.T) {
	tr := NewTransport()
	for _, s := range []float64{0, -1, 0.3, 1.1, 3} {
		if tr.SetSpeed(at(0), s, 10) {
			t.Fatalf("speed %g accepted", s)
		}
	}
	for _, s := range Speeds {
		if !tr.SetSpeed(at(0), s, 10) {
			t.Fatalf("allowed speed %g rejected", s)
		}
	}
}

func TestSeek_ClampsAndKeepsPlayState(t *testing.T) {
	tr := NewTransport()

	tr.Seek(at(0), -5, 10)
	if got := tr.Position(at(0), 10); got != 0 {
		t.Fatalf("seek(-5) = %g, want 0", got)
	}
	tr.Seek(at(0), 15, 10)
	if got := tr.Position(at(0), 10); got != 10 {
		t.Fatalf("seek(15) = %g, want 10", got)
	}
	if tr.Playing() {
		t.Fatal("seek changed play state")
	}

	tr.Play(at(0))
	tr.Seek(at(1), 5, 10)
	if !tr.Playing() {
		t.Fatal("seek paused a playing transport")
	}
	head, _ := tr.Advance(at(3), 10)
	if head != 7 {
		t.Fatalf("head = %g, want 7 (5 + 2s)", head)
	}
}

func TestPause_FreezesPlayhead(t *testing.T) {
	tr := NewTransport()
	tr.Play(at(0))
	tr.Pause(at(3), 10)

	if tr.Playing() {
		t.Fatal("still playing after pause")
	}
	if got := tr.Position(at(60), 10); got != 3 {
		t.Fatalf("position moved while paused: %g, want 3", got)
	}
}

func TestStepFrame(t *testing.T) {
	tr := NewTransport()
	tr.Seek(at(0), 1, 10)

	tr.StepFrame(30, 1, 10)
	want := 1 + 1.0/30
	if got := tr.Position(at(0), 10); got != want {
		t.Fatalf("step forward = %g, want %g", got, want)
	}

	tr.StepFrame(30, -1, 10)
	if got := tr.Position(at(0), 10); got != 1 {
		t.Fatalf("step back = %g, want 1", got)
	}

	// Clamped at zero.
	tr.Seek(at(0), 0, 10)
	tr.StepFrame(30, -1, 10)
	if got := tr.Position(at(0), 10); got != 0 {
		t.Fatalf("step below zero = %g", got)
	}
}

func TestSkip_Clamps(t *testing.T) {
	tr := NewTransport()
	tr.Seek(at(0), 8, 10)
	tr.Skip(at(0), 5, 10)
	if got := tr.Position(at(0), 10); got != 10 {
		t.Fatalf("skip past end = %g, want 10", got)
	}
	tr.Skip(at(0), -15, 10)
	if got := tr.Position(at(0), 10); got != 0 {
		t.Fatalf("skip past start = %g, want 0", got)
	}
}

func TestToggleMute_PreservesLastVolume(t *testing.T) {
	tr := NewTransport()
	tr.SetVolume(0.7)

	tr.ToggleMute()
	if !tr.Muted() || tr.Volume() != 0 {
		t.Fatal("mute did not silence")
	}

	tr.ToggleMute()
	if tr.Volume() != 0.7 {
		t.Fatalf("unmute volume = %g, want 0.7", tr.Volume())
	}
}

func TestToggleMute_FromZeroVolumeRestoresFullLevel(t *testing.T) {
	tr := NewTransport()
	tr.SetVolume(0)

	tr.ToggleMute()
	if tr.Volume() != 1 {
		t.Fatalf("unmute from explicit zero = %g, want 1", tr.Volume())
	}
}

func TestSetVolume_Clamps(t *testing.T) {
	tr := NewTransport()
	tr.SetVolume(1.5)
	if tr.Volume() != 1 {
		t.Fatalf("volume = %g, want 1", tr.Volume())
	}
	tr.SetVolume(-0.2)
	if tr.Volume() != 0 {
		t.Fatalf("volume = %g, want 0", tr.Volume())
	}
}
