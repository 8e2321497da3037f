package snap

import (
	"testing"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

func snapProject() timeline.Project {
	p := timeline.NewProject("snap")
	p, _ = p.AddScene(timeline.Scene{Name: "a", Duration: 4.3, StartTime: 0})
	p, _ = p.AddScene(timeline.Scene{Name: "b", Duration: 3, StartTime: 4.3})
	p, _ = p.AddMarker(timeline.Marker{Name: "m", Time: 2.6})
	return p
}

func cfg() Config {
	// 10px threshold at 50px/s = 0.2s time window.
	return Config{Enabled: true, ThresholdPx: 10, Zoom: 50}
}

func TestResolve_SnapsToNearestCandidate(t *testing.T) {
	p := snapProject()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"grid tick", 3.08, 3},
		{"marker", 2.55, 2.6},
		{"scene end", 4.25, 4.3},
		{"scene start second clip", 4.35, 4.3},
		{"exact stays", 2.6, 2.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.in, &p, cfg()); got != tt.want {
				t.Fatalf("Resolve(%g) = %g, want %g", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve_OutsideThresholdUnchanged(t *testing.T) {
	p := snapProject()
	in := 3.5 // nearest candidates: grid 4 (0.5), marker 2.6 (0.9), far beyond 0.2s
	if got := Resolve(in, &p, cfg()); got != in {
		t.Fatalf("Resolve(%g) = %g, want unchanged", in, got)
	}
}

func TestResolve_DisabledPassthrough(t *testing.T) {
	p := snapProject()
	c := cfg()
	c.Enabled = false
	if got := Resolve(3.01, &p, c); got != 3.01 {
		t.Fatalf("disabled Resolve = %g, want passthrough", got)
	}
}

func TestResolve_ZoomScalesThreshold(t *testing.T) {
	p := snapProject()

	// At high zoom the same pixel threshold is a narrow time window.
	zoomed := Config{Enabled: true, ThresholdPx: 10, Zoom: 200} // 0.05s
	if got := Resolve(3.08, &p, zoomed); got != 3.08 {
		t.Fatalf("high zoom Resolve = %g, want unchanged (0.08 > 0.05)", got)
	}

	// At low zoom it is a wide one.
	wide := Config{Enabled: true, ThresholdPx: 10, Zoom: 20} // 0.5s
	if got := Resolve(3.4, &p, wide); got != 3 {
		t.Fatalf("low zoom Resolve = %g, want 3", got)
	}
}

func TestResolve_TieGoesToEarliestEnumerated(t *testing.T) {
	p := timeline.NewProject("tie")
	// Marker at 2.8 and a scene edge at 3.2 are both 0.2 from 3.0, as is the
	// grid tick at 3.0 itself at distance 0 - remove the grid influence by
	// probing at 3.0 exactly between marker and edge.
	p, _ = p.AddScene(timeline.Scene{Name: "s", Duration: 1, StartTime: 3.2})
	p, _ = p.AddMarker(timeline.Marker{Name: "m", Time: 2.8})

	c := Config{Enabled: true, ThresholdPx: 10, Zoom: 50} // 0.2s window

	_, point := ResolvePoint(3.0, &p, c)
	if point == nil {
		t.Fatal("no snap point resolved")
	}
	// Grid tick at 3.0 has distance 0 and wins outright.
	if point.Source != "grid" {
		t.Fatalf("source = %q, want grid", point.Source)
	}

	// With the marker and a scene edge equidistant from the probe and the
	// grid tick out of range, enumeration order (marker first) breaks the
	// tie. The values are exactly representable so the distances really tie.
	pNoGrid := timeline.NewProject("tie2")
	pNoGrid, _ = pNoGrid.AddScene(timeline.Scene{Name: "s", Duration: 1, StartTime: 2.75})
	pNoGrid, _ = pNoGrid.AddMarker(timeline.Marker{Name: "m", Time: 2.25})

	narrow := Config{Enabled: true, ThresholdPx: 12.5, Zoom: 50} // 0.25s window
	_, point = ResolvePoint(2.5, &pNoGrid, narrow)
	if point == nil {
		t.Fatal("no snap point resolved for tie")
	}
	if point.Source != "marker" {
		t.Fatalf("tie went to %q, want marker (earlier in candidate order)", point.Source)
	}
	if point.Time != 2.25 {
		t.Fatalf("tie time = %g, want 2.25", point.Time)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	p := snapProject()
	c := cfg()

	once := Resolve(2.55, &p, c)
	twice := Resolve(once, &p, c)
	if once != twice {
		t.Fatalf("not idempotent: %g then %g", once, twice)
	}
}

func TestCandidates_PriorityOrder(t *testing.T) {
	p := snapProject()
	pts := Candidates(1.2, &p)

	if len(pts) == 0 || pts[0].Source != "grid" {
		t.Fatal("grid candidate not first")
	}
	if pts[0].Time != 1 {
		t.Fatalf("grid tick = %g, want 1", pts[0].Time)
	}

	sawMarker := false
	for _, pt := range pts {
		if pt.Source == "marker" {
			sawMarker = true
		}
		if (pt.Source == "scene-start" || pt.Source == "scene-end") && !sawMarker {
			t.Fatal("scene edges enumerated before markers")
		}
	}
}
