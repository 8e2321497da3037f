package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/db"
	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	database, err := db.New(filepath.Join(t.TempDir(), "studio.db"), logger)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database.Conn())
}

func sampleProject(name string) timeline.Project {
	p := timeline.NewProject(name)
	p, _ = p.AddScene(timeline.Scene{Name: "Intro", Duration: 5, Thumbnail: "thumb.jpg"})
	p, _ = p.AddScene(timeline.Scene{Name: "Outro", Duration: 3, StartTime: 5})
	p, _ = p.AddMarker(timeline.Marker{Name: "cue", Time: 2, Color: "#ff0000"})
	return p
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProject("Round Trip")
	if err := s.Save(ctx, &p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx, p.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil for a saved project")
	}
	if loaded.Name != "Round Trip" || len(loaded.Scenes) != 2 || len(loaded.Markers) != 1 {
		t.Fatalf("loaded project wrong: %+v", loaded)
	}
	if loaded.Scenes[0].Scale != 1 {
		t.Fatal("loaded project not normalized")
	}
}

func TestLoad_MissingReturnsNil(t *testing.T) {
	s := newTestStore(t)
	loaded, err := s.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != nil {
		t.Fatal("Load returned a project for a missing id")
	}
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A legacy payload carrying a stored totalDuration field loads cleanly;
	// the value is discarded and the duration derived from the scenes.
	legacy := `{"id":"legacy-1","name":"Legacy","totalDuration":999,
		"scenes":[{"id":"s1","name":"a","duration":4,"startTime":0}]}`
	p, err := s.Import(ctx, strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("Import legacy payload: %v", err)
	}
	if got := p.TotalDuration(); got != 4 {
		t.Fatalf("TotalDuration = %g, want 4 (derived, not stored)", got)
	}
}

func TestList_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := sampleProject("Older")
	newer := sampleProject("Newer")
	newer.UpdatedAt = newer.UpdatedAt.Add(time.Hour)

	if err := s.Save(ctx, &older); err != nil {
		t.Fatalf("Save older: %v", err)
	}
	if err := s.Save(ctx, &newer); err != nil {
		t.Fatalf("Save newer: %v", err)
	}

	summaries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
	if summaries[0].Name != "Newer" {
		t.Fatalf("first = %q, want Newer", summaries[0].Name)
	}
	if summaries[0].Thumbnail != "thumb.jpg" {
		t.Fatalf("thumbnail = %q", summaries[0].Thumbnail)
	}
}

func TestSave_SetsCurrentProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProject("Current")
	if err := s.Save(ctx, &p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current, err := s.CurrentProjectID(ctx)
	if err != nil {
		t.Fatalf("CurrentProjectID: %v", err)
	}
	if current != p.ID {
		t.Fatalf("current = %q, want %q", current, p.ID)
	}
}

func TestDelete_ClearsCurrentPointer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProject("Doomed")
	if err := s.Save(ctx, &p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	loaded, _ := s.Load(ctx, p.ID)
	if loaded != nil {
		t.Fatal("project still loadable after delete")
	}
	current, _ := s.CurrentProjectID(ctx)
	if current != "" {
		t.Fatalf("current pointer = %q after deleting current project", current)
	}
}

func TestDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProject("Source")
	if err := s.Save(ctx, &p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dup, err := s.Duplicate(ctx, p.ID, "The Copy")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == p.ID {
		t.Fatal("duplicate shares source id")
	}
	if dup.Name != "The Copy" {
		t.Fatalf("name = %q", dup.Name)
	}
	if len(dup.Scenes) != len(p.Scenes) {
		t.Fatal("scene content not copied")
	}

	// Both projects exist independently.
	summaries, _ := s.List(ctx)
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
}

func TestDuplicate_MissingSource(t *testing.T) {
	s := newTestStore(t)
	dup, err := s.Duplicate(context.Background(), "missing", "x")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup != nil {
		t.Fatal("Duplicate invented a project for a missing source")
	}
}

func TestImport_AssignsFreshIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProject("Exported")
	data, err := ExportJSON(&p)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	imported, err := s.Import(ctx, strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.ID == p.ID {
		t.Fatal("import kept the exported id")
	}
	if imported.Name != "Exported" || len(imported.Scenes) != 2 {
		t.Fatal("imported content wrong")
	}

	loaded, _ := s.Load(ctx, imported.ID)
	if loaded == nil {
		t.Fatal("imported project not persisted")
	}
}

func TestImport_MalformedJSON(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, strings.NewReader("{not json"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}

	// The store is untouched by the failed import.
	summaries, _ := s.List(ctx)
	if len(summaries) != 0 {
		t.Fatal("failed import left residue in the store")
	}
}

func TestImport_ReadFailure(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Import(context.Background(), failingReader{})
	if !errors.Is(err, ErrReadFile) {
		t.Fatalf("err = %v, want ErrReadFile", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk exploded")
}

func TestConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetConfig(ctx, "auth_token", "secret"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	got, err := s.GetConfig(ctx, "auth_token")
	if err != nil || got != "secret" {
		t.Fatalf("GetConfig = %q, %v", got, err)
	}

	// Upsert overwrites.
	if err := s.SetConfig(ctx, "auth_token", "rotated"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	got, _ = s.GetConfig(ctx, "auth_token")
	if got != "rotated" {
		t.Fatalf("GetConfig after upsert = %q", got)
	}

	// Missing keys read as empty without error.
	got, err = s.GetConfig(ctx, "missing")
	if err != nil || got != "" {
		t.Fatalf("GetConfig(missing) = %q, %v", got, err)
	}
}
