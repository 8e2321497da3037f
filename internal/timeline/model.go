// Package timeline defines the temporal entity model of a video project and
// the mutation operations over it. Every operation is copy-on-write: it takes
// a Project and returns a new consistent Project, leaving the input untouched.
package timeline

import (
	"time"

	"github.com/google/uuid"
)

const (
	SceneTypeVideo       = "video"
	SceneTypeImage       = "image"
	SceneTypeAIGenerated = "ai-generated"
	SceneTypeText        = "text"

	BlendModeNormal = "normal"

	DefaultWidth  = 1920
	DefaultHeight = 1080
	DefaultFPS    = 30
)

// Filter is a single visual adjustment applied to a scene.
type Filter struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"` // brightness, contrast, saturation, blur
	Value float64 `json:"value"`
}

// Transition describes how a scene blends into the next one.
type Transition struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"` // fade, slide, zoom, dissolve, wipe
	Duration  float64 `json:"duration"`
	Direction string  `json:"direction,omitempty"` // left, right, up, down
}

// TextAnimation animates the text content of a text scene.
type TextAnimation struct {
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
	Delay    float64 `json:"delay,omitempty"`
}

// Transform holds rotation, mirroring and crop insets for a scene.
type Transform struct {
	Rotate     int     `json:"rotate"` // 0, 90, 180, 270
	FlipH      bool    `json:"flipH,omitempty"`
	FlipV      bool    `json:"flipV,omitempty"`
	CropTop    float64 `json:"cropTop,omitempty"`
	CropRight  float64 `json:"cropRight,omitempty"`
	CropBottom float64 `json:"cropBottom,omitempty"`
	CropLeft   float64 `json:"cropLeft,omitempty"`
}

// KenBurnsEffect is an animated pan+zoom between a start and end camera state.
type KenBurnsEffect struct {
	StartX    float64 `json:"startX"`
	StartY    float64 `json:"startY"`
	StartZoom float64 `json:"startZoom"`
	EndX      float64 `json:"endX"`
	EndY      float64 `json:"endY"`
	EndZoom   float64 `json:"endZoom"`
	Easing    string  `json:"easing,omitempty"` // linear, ease-in, ease-out, ease-in-out
}

// BackgroundRemoval is a request descriptor, not an executed effect: it
// records that the scene should be matted by the named provider at render
// time.
type BackgroundRemoval struct {
	Provider    string `json:"provider"`
	HighQuality bool   `json:"highQuality,omitempty"`
}

// Position is a point expressed as percentages of the frame (50/50 = center).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scene is a placed visual element on the timeline's video track.
type Scene struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Duration  float64 `json:"duration"`  // seconds, > 0
	StartTime float64 `json:"startTime"` // seconds, >= 0
	Thumbnail string  `json:"thumbnail,omitempty"`

	// Media properties
	Src    string `json:"src,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	// AI provenance
	Prompt     string `json:"prompt,omitempty"`
	AIProvider string `json:"aiProvider,omitempty"` // openai, stability, runway

	// Text properties
	Text       string `json:"text,omitempty"`
	FontSize   int    `json:"fontSize,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
	Color      string `json:"color,omitempty"`

	// Trim state. OriginalDuration is captured on first trim and preserved
	// afterwards as the reset target; duration = originalDuration -
	// trimStart - trimEnd whenever the trim fields are set.
	TrimStart        float64 `json:"trimStart,omitempty"`
	TrimEnd          float64 `json:"trimEnd,omitempty"`
	OriginalDuration float64 `json:"originalDuration,omitempty"`

	// Visual composition
	Layer     int      `json:"layer"`
	Position  Position `json:"position"`
	Scale     float64  `json:"scale"`
	Opacity   float64  `json:"opacity"`
	BlendMode string   `json:"blendMode"`

	// Effects
	Filters           []Filter           `json:"filters,omitempty"`
	Transition        *Transition        `json:"transition,omitempty"`
	TextAnimation     *TextAnimation     `json:"textAnimation,omitempty"`
	Transform         *Transform         `json:"transform,omitempty"`
	KenBurnsEffect    *KenBurnsEffect    `json:"kenBurnsEffect,omitempty"`
	BackgroundRemoval *BackgroundRemoval `json:"backgroundRemoval,omitempty"`
	PlaybackSpeed     float64            `json:"playbackSpeed"`
}

// EndTime returns the exclusive end of the scene's interval on the timeline.
func (s *Scene) EndTime() float64 {
	return s.StartTime + s.Duration
}

// AudioTrack is an independent timed audio clip. It is not part of the ordered
// visual sequence and is never implicitly reordered with scenes.
type AudioTrack struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Src       string  `json:"src"`
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
	Volume    float64 `json:"volume"` // 0-1
	FadeIn    float64 `json:"fadeIn,omitempty"`
	FadeOut   float64 `json:"fadeOut,omitempty"`
}

// Marker is a named timestamp bookmark used for navigation and snapping.
type Marker struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Time        float64 `json:"time"`
	Color       string  `json:"color"`
	Description string  `json:"description,omitempty"`
}

// Resolution is the output frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Project is the aggregate root: the ordered visual track, the flat audio
// track set and the marker set. Scene order is meaningful (it is the visual
// arrangement); audio and marker order is not, though markers are kept sorted
// by time.
//
// Total duration is intentionally not a stored field. It is derived from the
// scenes on every read via TotalDuration, so it can never go stale.
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Scenes      []Scene      `json:"scenes"`
	AudioTracks []AudioTrack `json:"audioTracks"`
	Markers     []Marker     `json:"markers"`
	Resolution  Resolution   `json:"resolution"`
	FPS         int          `json:"fps"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewID returns a fresh unique identifier.
func NewID() string {
	return uuid.NewString()
}

// NewProject creates an empty project with default output settings.
func NewProject(name string) Project {
	now := time.Now().UTC()
	return Project{
		ID:          NewID(),
		Name:        name,
		Scenes:      []Scene{},
		AudioTracks: []AudioTrack{},
		Markers:     []Marker{},
		Resolution:  Resolution{Width: DefaultWidth, Height: DefaultHeight},
		FPS:         DefaultFPS,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TotalDuration is the derived timeline length: the maximum scene end time.
func (p *Project) TotalDuration() float64 {
	total := 0.0
	for i := range p.Scenes {
		if end := p.Scenes[i].EndTime(); end > total {
			total = end
		}
	}
	return total
}

// FindScene resolves a scene id to its index, or -1 when absent. Callers
// holding a scene id must re-resolve it at point of use; ids can dangle after
// a delete.
func (p *Project) FindScene(id string) int {
	for i := range p.Scenes {
		if p.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindAudioTrack resolves an audio track id to its index, or -1 when absent.
func (p *Project) FindAudioTrack(id string) int {
	for i := range p.AudioTracks {
		if p.AudioTracks[i].ID == id {
			return i
		}
	}
	return -1
}

// FindMarker resolves a marker id to its index, or -1 when absent.
func (p *Project) FindMarker(id string) int {
	for i := range p.Markers {
		if p.Markers[i].ID == id {
			return i
		}
	}
	return -1
}

// SceneAt returns the scene visible at time t, honoring the half-open
// [startTime, startTime+duration) interval of each scene. When scenes overlap
// the earliest one in array order wins.
func (p *Project) SceneAt(t float64) (Scene, bool) {
	for i := range p.Scenes {
		s := &p.Scenes[i]
		if t >= s.StartTime && t < s.EndTime() {
			return cloneScene(*s), true
		}
	}
	return Scene{}, false
}

// AudibleAt returns the audio tracks sounding at time t.
func (p *Project) AudibleAt(t float64) []AudioTrack {
	var out []AudioTrack
	for i := range p.AudioTracks {
		a := p.AudioTracks[i]
		if t >= a.StartTime && t < a.StartTime+a.Duration {
			out = append(out, a)
		}
	}
	return out
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (p *Project) Clone() Project {
	out := *p
	out.Scenes = make([]Scene, len(p.Scenes))
	for i := range p.Scenes {
		out.Scenes[i] = cloneScene(p.Scenes[i])
	}
	out.AudioTracks = make([]AudioTrack, len(p.AudioTracks))
	copy(out.AudioTracks, p.AudioTracks)
	out.Markers = make([]Marker, len(p.Markers))
	copy(out.Markers, p.Markers)
	return out
}

// Clone returns a deep copy of the scene sharing no mutable state with the
// receiver.
func (s Scene) Clone() Scene {
	return cloneScene(s)
}

func cloneScene(s Scene) Scene {
	out := s
	if s.Filters != nil {
		out.Filters = make([]Filter, len(s.Filters))
		copy(out.Filters, s.Filters)
	}
	if s.Transition != nil {
		t := *s.Transition
		out.Transition = &t
	}
	if s.TextAnimation != nil {
		a := *s.TextAnimation
		out.TextAnimation = &a
	}
	if s.Transform != nil {
		tr := *s.Transform
		out.Transform = &tr
	}
	if s.KenBurnsEffect != nil {
		kb := *s.KenBurnsEffect
		out.KenBurnsEffect = &kb
	}
	if s.BackgroundRemoval != nil {
		br := *s.BackgroundRemoval
		out.BackgroundRemoval = &br
	}
	return out
}

// Normalize fills zero-value composition attributes with their defaults and
// ensures the owned collections are non-nil. Load paths call it so that
// projects saved by older versions (missing markers, missing defaults) come
// back usable.
func (p *Project) Normalize() {
	if p.Scenes == nil {
		p.Scenes = []Scene{}
	}
	if p.AudioTracks == nil {
		p.AudioTracks = []AudioTrack{}
	}
	if p.Markers == nil {
		p.Markers = []Marker{}
	}
	if p.Resolution.Width == 0 {
		p.Resolution.Width = DefaultWidth
	}
	if p.Resolution.Height == 0 {
		p.Resolution.Height = DefaultHeight
	}
	if p.FPS == 0 {
		p.FPS = DefaultFPS
	}
	for i := range p.Scenes {
		normalizeScene(&p.Scenes[i])
	}
	sortMarkers(p.Markers)
}

func normalizeScene(s *Scene) {
	if s.Scale == 0 {
		s.Scale = 1
	}
	if s.Opacity == 0 {
		s.Opacity = 1
	}
	if s.BlendMode == "" {
		s.BlendMode = BlendModeNormal
	}
	if s.PlaybackSpeed == 0 {
		s.PlaybackSpeed = 1
	}
	if s.Position.X == 0 && s.Position.Y == 0 {
		s.Position = Position{X: 50, Y: 50}
	}
}
