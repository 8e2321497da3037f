package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

// ExportJSON serializes the project as indented JSON. The layout is the
// project's wire form: scenes, audioTracks and markers arrays, resolution,
// fps, RFC3339 timestamps.
func ExportJSON(p *timeline.Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	return data, nil
}

// ExportToFile writes the project's export form to path.
func ExportToFile(p *timeline.Project, path string) error {
	data, err := ExportJSON(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

// ExportFilename derives a safe download filename from the project name.
func ExportFilename(p *timeline.Project) string {
	var b strings.Builder
	for _, r := range p.Name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "project"
	}
	return name + ".json"
}

// Import deserializes a project from r, assigns a fresh id and fresh
// timestamps, and saves it. Read failures and parse failures are reported as
// distinguishable errors (ErrReadFile vs ErrParse); in either case the store
// is left unchanged.
func (s *SQLiteStore) Import(ctx context.Context, r io.Reader) (*timeline.Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFile, err)
	}

	var p timeline.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	p.Normalize()

	p.ID = timeline.NewID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.Save(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ImportFromFile is Import reading from a file on disk.
func (s *SQLiteStore) ImportFromFile(ctx context.Context, path string) (*timeline.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFile, err)
	}
	defer f.Close()
	return s.Import(ctx, f)
}
