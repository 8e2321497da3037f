package timeline

import (
	"sort"
	"time"
)

// SceneUpdate is a partial update merged into an existing scene. Nil fields
// are left untouched. Trim updates do not recompute Duration; callers that
// trim must supply the new Duration alongside TrimStart/TrimEnd.
type SceneUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	StartTime *float64 `json:"startTime,omitempty"`
	Thumbnail *string  `json:"thumbnail,omitempty"`

	Src    *string `json:"src,omitempty"`
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`

	Prompt     *string `json:"prompt,omitempty"`
	AIProvider *string `json:"aiProvider,omitempty"`

	Text       *string `json:"text,omitempty"`
	FontSize   *int    `json:"fontSize,omitempty"`
	FontFamily *string `json:"fontFamily,omitempty"`
	Color      *string `json:"color,omitempty"`

	TrimStart        *float64 `json:"trimStart,omitempty"`
	TrimEnd          *float64 `json:"trimEnd,omitempty"`
	OriginalDuration *float64 `json:"originalDuration,omitempty"`

	Layer     *int      `json:"layer,omitempty"`
	Position  *Position `json:"position,omitempty"`
	Scale     *float64  `json:"scale,omitempty"`
	Opacity   *float64  `json:"opacity,omitempty"`
	BlendMode *string   `json:"blendMode,omitempty"`

	Filters           []Filter           `json:"filters,omitempty"`
	Transition        *Transition        `json:"transition,omitempty"`
	TextAnimation     *TextAnimation     `json:"textAnimation,omitempty"`
	Transform         *Transform         `json:"transform,omitempty"`
	KenBurnsEffect    *KenBurnsEffect    `json:"kenBurnsEffect,omitempty"`
	BackgroundRemoval *BackgroundRemoval `json:"backgroundRemoval,omitempty"`
	PlaybackSpeed     *float64           `json:"playbackSpeed,omitempty"`

	ClearFilters           bool `json:"clearFilters,omitempty"`
	ClearTransition        bool `json:"clearTransition,omitempty"`
	ClearTextAnimation     bool `json:"clearTextAnimation,omitempty"`
	ClearTransform         bool `json:"clearTransform,omitempty"`
	ClearKenBurnsEffect    bool `json:"clearKenBurnsEffect,omitempty"`
	ClearBackgroundRemoval bool `json:"clearBackgroundRemoval,omitempty"`
}

// AudioTrackUpdate is a partial update merged into an existing audio track.
type AudioTrackUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Src       *string  `json:"src,omitempty"`
	StartTime *float64 `json:"startTime,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
	FadeIn    *float64 `json:"fadeIn,omitempty"`
	FadeOut   *float64 `json:"fadeOut,omitempty"`
}

// MarkerUpdate is a partial update merged into an existing marker.
type MarkerUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Time        *float64 `json:"time,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// AddScene appends a scene to the end of the visual track. The input's ID is
// replaced with a fresh one. StartTime is taken as given: the engine never
// assigns it, callers append at TotalDuration when they want end-of-timeline
// placement.
func (p Project) AddScene(data Scene) (Project, Scene) {
	out := p.Clone()
	data.ID = NewID()
	normalizeScene(&data)
	out.Scenes = append(out.Scenes, data)
	out.UpdatedAt = time.Now().UTC()
	return out, data
}

// UpdateScene merges a partial update into the scene with the given id.
// Returns the input unchanged with ok=false when the id does not resolve.
func (p Project) UpdateScene(id string, u SceneUpdate) (Project, bool) {
	idx := p.FindScene(id)
	if idx < 0 {
		return p, false
	}

	out := p.Clone()
	s := &out.Scenes[idx]

	setString(&s.Name, u.Name)
	setFloat(&s.Duration, u.Duration)
	setFloat(&s.StartTime, u.StartTime)
	setString(&s.Thumbnail, u.Thumbnail)
	setString(&s.Src, u.Src)
	setInt(&s.Width, u.Width)
	setInt(&s.Height, u.Height)
	setString(&s.Prompt, u.Prompt)
	setString(&s.AIProvider, u.AIProvider)
	setString(&s.Text, u.Text)
	setInt(&s.FontSize, u.FontSize)
	setString(&s.FontFamily, u.FontFamily)
	setString(&s.Color, u.Color)
	setFloat(&s.TrimStart, u.TrimStart)
	setFloat(&s.TrimEnd, u.TrimEnd)
	setFloat(&s.OriginalDuration, u.OriginalDuration)
	setInt(&s.Layer, u.Layer)
	if u.Position != nil {
		s.Position = *u.Position
	}
	setFloat(&s.Scale, u.Scale)
	setFloat(&s.Opacity, u.Opacity)
	setString(&s.BlendMode, u.BlendMode)
	setFloat(&s.PlaybackSpeed, u.PlaybackSpeed)

	if u.Filters != nil {
		s.Filters = make([]Filter, len(u.Filters))
		copy(s.Filters, u.Filters)
	}
	if u.Transition != nil {
		t := *u.Transition
		s.Transition = &t
	}
	if u.TextAnimation != nil {
		a := *u.TextAnimation
		s.TextAnimation = &a
	}
	if u.Transform != nil {
		tr := *u.Transform
		s.Transform = &tr
	}
	if u.KenBurnsEffect != nil {
		kb := *u.KenBurnsEffect
		s.KenBurnsEffect = &kb
	}
	if u.BackgroundRemoval != nil {
		br := *u.BackgroundRemoval
		s.BackgroundRemoval = &br
	}

	if u.ClearFilters {
		s.Filters = nil
	}
	if u.ClearTransition {
		s.Transition = nil
	}
	if u.ClearTextAnimation {
		s.TextAnimation = nil
	}
	if u.ClearTransform {
		s.Transform = nil
	}
	if u.ClearKenBurnsEffect {
		s.KenBurnsEffect = nil
	}
	if u.ClearBackgroundRemoval {
		s.BackgroundRemoval = nil
	}

	out.UpdatedAt = time.Now().UTC()
	return out, true
}

// DeleteScene removes the scene with the given id. The gap it leaves is
// preserved: later scenes keep their start times. Only ReorderScenes repacks
// the timeline.
func (p Project) DeleteScene(id string) (Project, bool) {
	idx := p.FindScene(id)
	if idx < 0 {
		return p, false
	}
	out := p.Clone()
	out.Scenes = append(out.Scenes[:idx], out.Scenes[idx+1:]...)
	out.UpdatedAt = time.Now().UTC()
	return out, true
}

// ReorderScenes reassigns the visual-track order to match ids, which must be
// a full permutation of the current scene ids, then repacks start times
// sequentially from zero so the sequence is contiguous with no gaps and no
// overlaps.
func (p Project) ReorderScenes(ids []string) (Project, bool) {
	if len(ids) != len(p.Scenes) {
		return p, false
	}

	byID := make(map[string]int, len(p.Scenes))
	for i := range p.Scenes {
		byID[p.Scenes[i].ID] = i
	}

	seen := make(map[string]bool, len(ids))
	reordered := make([]Scene, 0, len(ids))
	for _, id := range ids {
		idx, ok := byID[id]
		if !ok || seen[id] {
			return p, false
		}
		seen[id] = true
		reordered = append(reordered, cloneScene(p.Scenes[idx]))
	}

	current := 0.0
	for i := range reordered {
		reordered[i].StartTime = current
		current += reordered[i].Duration
	}

	out := p.Clone()
	out.Scenes = reordered
	out.UpdatedAt = time.Now().UTC()
	return out, true
}

// DuplicateScene clones the scene with a fresh id and a " (Copy)" name
// suffix and appends it to the end of the track. StartTime is copied
// verbatim; duplication does not relocate, so the copy may overlap the
// original until the caller repositions it.
func (p Project) DuplicateScene(id string) (Project, Scene, bool) {
	idx := p.FindScene(id)
	if idx < 0 {
		return p, Scene{}, false
	}
	out := p.Clone()
	dup := cloneScene(out.Scenes[idx])
	dup.ID = NewID()
	dup.Name = dup.Name + " (Copy)"
	out.Scenes = append(out.Scenes, dup)
	out.UpdatedAt = time.Now().UTC()
	return out, dup, true
}

// SplitScene decomposes one scene into two at splitTime seconds into the
// scene. The parts exactly tile the original interval: part 1 keeps the
// start and absorbs the removed tail into its trim-end, part 2 starts at the
// cut and absorbs the removed head into its trim-start. Out-of-bounds split
// times are a no-op.
func (p Project) SplitScene(id string, splitTime float64) (Project, bool) {
	idx := p.FindScene(id)
	if idx < 0 {
		return p, false
	}
	src := p.Scenes[idx]
	if splitTime <= 0 || splitTime >= src.Duration {
		return p, false
	}

	first := cloneScene(src)
	first.ID = NewID()
	first.Name = src.Name + " (Part 1)"
	first.Duration = splitTime
	first.TrimEnd = src.TrimEnd + (src.Duration - splitTime)

	second := cloneScene(src)
	second.ID = NewID()
	second.Name = src.Name + " (Part 2)"
	second.StartTime = src.StartTime + splitTime
	second.Duration = src.Duration - splitTime
	second.TrimStart = src.TrimStart + splitTime

	if first.OriginalDuration == 0 {
		first.OriginalDuration = src.Duration
		second.OriginalDuration = src.Duration
	}

	out := p.Clone()
	scenes := make([]Scene, 0, len(out.Scenes)+1)
	scenes = append(scenes, out.Scenes[:idx]...)
	scenes = append(scenes, first, second)
	scenes = append(scenes, out.Scenes[idx+1:]...)
	out.Scenes = scenes
	out.UpdatedAt = time.Now().UTC()
	return out, true
}

// AddAudioTrack appends an audio track. Audio tracks are flat: no cross-track
// recomputation happens on any audio mutation.
func (p Project) AddAudioTrack(data AudioTrack) (Project, AudioTrack) {
	out := p.Clone()
	data.ID = NewID()
	out.AudioTracks = append(out.AudioTracks, data)
	out.UpdatedAt = time.Now().UTC()
	return out, data
}

// UpdateAudioTrack merges a partial update into the track with the given id.
func (p Project) UpdateAudioTrack(id string, u AudioTrackUpdate) (Project, bool) {
	idx := p.FindAudioTrack(id)
	if idx < 0 {
		return p, false
	}
	out := p.Clone()
	a := &out.AudioTracks[idx]
	setString(&a.Name, u.Name)
	setString(&a.Src, u.Src)
	setFloat(&a.StartTime, u.StartTime)
	setFloat(&a.Duration, u.Duration)
	setFloat(&a.Volume, u.Volume)
	setFloat(&a.FadeIn, u.FadeIn)
	setFloat(&a.FadeOut, u.FadeOut)
	out.UpdatedAt = time.Now().UTC()
	return out, true
}

// DeleteAudioTrack removes the track with the given id.
func (p Project) DeleteAudioTrack(id string) (Project, bool) {
	idx := p.FindAudioTrack(id)
	if idx < 0 {
		return p, false
	}
	out := p.Clone()
	out.AudioTracks = append(out.AudioTracks[:idx], out.AudioTracks[idx+1:]...)
	out.UpdatedAt = time.Now().UTC()
	return out, true
}

// DuplicateAudioTrack clones the track with a fresh id and a " (Copy)" name
// suffix.
func (p Project) DuplicateAudioTrack(id string) (Project, AudioTrack, bool) {
	idx := p.FindAudioTrack(id)
	if idx < 0 {
		return p, AudioTrack{}, false
	}
	out := p.Clone()
	dup := out.AudioTracks[idx]
	dup.ID = NewID()
	dup.Name = dup.Name + " (Copy)"
	out.AudioTracks = append(out.AudioTracks, dup)
	out.UpdatedAt = time.Now().UTC()
	return out, dup, true
}

// AddMarker inserts a marker and re-sorts the marker set by time.
func (p Project) AddMarker(data Marker) (Project, Marker) {
	out := p.Clone()
	data.ID = NewID()
	out.Markers = append(out.Markers, data)
	sortMarkers(out.Markers)
	out.UpdatedAt = time.Now().UTC()
	return out, data
}

// UpdateMarker merges a partial update into the marker with the given id and
// re-sorts the marker set by time.
func (p Project) UpdateMarker(id string, u MarkerUpdate) (Project, bool) {
	idx := p.FindMarker(id)
	if idx < 0 {
		return p, false
	}
	out := p.Clone()
	m := &out.Markers[idx]
	setString(&m.Name, u.Name)
	setFloat(&m.Time, u.Time)
	setString(&m.Color, u.Color)
	setString(&m.Description, u.Description)
	sortMarkers(out.Markers)
	out.UpdatedAt = time.Now().UTC()
	return out, true
}

// DeleteMarker removes the marker with the given id.
func (p Project) DeleteMarker(id string) (Project, bool) {
	idx := p.FindMarker(id)
	if idx < 0 {
		return p, false
	}
	out := p.Clone()
	out.Markers = append(out.Markers[:idx], out.Markers[idx+1:]...)
	out.UpdatedAt = time.Now().UTC()
	return out, true
}

func sortMarkers(markers []Marker) {
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Time < markers[j].Time
	})
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
