// Package template ships a built-in catalog of starter projects. The catalog
// is embedded YAML; instantiating a template produces a fresh project with
// its own ids and timestamps.
package template

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

//go:embed templates.yaml
var catalogYAML []byte

// Template describes one starter project.
type Template struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Category    string  `yaml:"category" json:"category"`
	Description string  `yaml:"description" json:"description"`
	Width       int     `yaml:"width" json:"width"`
	Height      int     `yaml:"height" json:"height"`
	FPS         int     `yaml:"fps" json:"fps"`
	Scenes      []Scene `yaml:"scenes" json:"scenes"`
}

// Scene is the template form of a timeline scene: only layout fields, no
// identity.
type Scene struct {
	Type       string  `yaml:"type" json:"type"`
	Name       string  `yaml:"name" json:"name"`
	Duration   float64 `yaml:"duration" json:"duration"`
	Text       string  `yaml:"text,omitempty" json:"text,omitempty"`
	FontSize   int     `yaml:"fontSize,omitempty" json:"fontSize,omitempty"`
	FontFamily string  `yaml:"fontFamily,omitempty" json:"fontFamily,omitempty"`
	Color      string  `yaml:"color,omitempty" json:"color,omitempty"`
	Prompt     string  `yaml:"prompt,omitempty" json:"prompt,omitempty"`
}

// Catalog is the loaded template set, in file order.
type Catalog struct {
	templates []Template
	byID      map[string]*Template
}

// Load parses the embedded catalog. The catalog is static, so a parse error
// is a build defect and Load reports it once at startup.
func Load() (*Catalog, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	c := &Catalog{
		templates: doc.Templates,
		byID:      make(map[string]*Template, len(doc.Templates)),
	}
	for i := range c.templates {
		t := &c.templates[i]
		if t.ID == "" {
			return nil, fmt.Errorf("template %d has no id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.byID[t.ID] = t
	}
	return c, nil
}

// List returns the catalog in declaration order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get returns the template with the given id, or false.
func (c *Catalog) Get(id string) (Template, bool) {
	t, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return *t, true
}

// Instantiate builds a new project from the template. Scenes are packed
// contiguously from zero; every entity gets a fresh id.
func (c *Catalog) Instantiate(id, projectName string) (timeline.Project, error) {
	t, ok := c.byID[id]
	if !ok {
		return timeline.Project{}, fmt.Errorf("unknown template %q", id)
	}

	name := projectName
	if name == "" {
		name = t.Name
	}
	p := timeline.NewProject(name)
	if t.Width > 0 && t.Height > 0 {
		p.Resolution = timeline.Resolution{Width: t.Width, Height: t.Height}
	}
	if t.FPS > 0 {
		p.FPS = t.FPS
	}

	start := 0.0
	for _, ts := range t.Scenes {
		scene := timeline.Scene{
			Type:       ts.Type,
			Name:       ts.Name,
			Duration:   ts.Duration,
			StartTime:  start,
			Text:       ts.Text,
			FontSize:   ts.FontSize,
			FontFamily: ts.FontFamily,
			Color:      ts.Color,
			Prompt:     ts.Prompt,
		}
		p, _ = p.AddScene(scene)
		start += ts.Duration
	}

	p.Normalize()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}
