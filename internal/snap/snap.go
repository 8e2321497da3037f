// Package snap resolves a requested timeline time to the nearest interesting
// point: a whole-second grid tick, a marker, or a scene edge.
package snap

import (
	"math"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

// GridInterval is the spacing of grid snap points in seconds.
const GridInterval = 1.0

// Config carries the timeline-view parameters that shape snapping. The
// threshold is expressed in pixels so the snap distance feels constant on
// screen; it is divided by zoom (pixels per second) to get a time window.
type Config struct {
	Enabled     bool
	ThresholdPx float64
	Zoom        float64
}

// Point is a candidate snap target.
type Point struct {
	Time   float64
	Source string // grid, marker, scene-start, scene-end
}

// Candidates enumerates snap points in priority order: the grid tick nearest
// to t, then every marker, then both edges of every scene. Enumeration order
// is the documented tie-break order.
func Candidates(t float64, p *timeline.Project) []Point {
	points := []Point{{
		Time:   math.Round(t/GridInterval) * GridInterval,
		Source: "grid",
	}}

	for i := range p.Markers {
		points = append(points, Point{Time: p.Markers[i].Time, Source: "marker"})
	}

	for i := range p.Scenes {
		s := &p.Scenes[i]
		points = append(points, Point{Time: s.StartTime, Source: "scene-start"})
		points = append(points, Point{Time: s.EndTime(), Source: "scene-end"})
	}

	return points
}

// Resolve returns the snapped time for t, or t unchanged when snapping is
// disabled or no candidate falls within the threshold. Ties between equally
// distant candidates go to the earliest enumerated one.
func Resolve(t float64, p *timeline.Project, cfg Config) float64 {
	snapped, _ := ResolvePoint(t, p, cfg)
	return snapped
}

// ResolvePoint is Resolve plus the winning candidate, when one exists.
func ResolvePoint(t float64, p *timeline.Project, cfg Config) (float64, *Point) {
	if !cfg.Enabled || cfg.Zoom <= 0 {
		return t, nil
	}

	threshold := cfg.ThresholdPx / cfg.Zoom

	var best *Point
	bestDist := math.Inf(1)
	for _, cand := range Candidates(t, p) {
		dist := math.Abs(cand.Time - t)
		if dist <= threshold && dist < bestDist {
			c := cand
			best = &c
			bestDist = dist
		}
	}

	if best == nil {
		return t, nil
	}
	return best.Time, best
}
