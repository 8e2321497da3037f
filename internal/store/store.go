// Package store is the persistence gateway for projects: SQLite-backed
// save/load/list/delete/duplicate plus JSON file import and export.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

const currentProjectKey = "current_project_id"

var (
	// ErrReadFile marks an import failure before the payload could be parsed.
	ErrReadFile = errors.New("failed to read project file")
	// ErrParse marks an import failure caused by malformed project JSON.
	ErrParse = errors.New("invalid project file")
)

// Summary is the listing row for a saved project.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Store is the persistence contract the editor session depends on. Save is
// invoked after every state-changing operation (auto-save on every edit).
type Store interface {
	Save(ctx context.Context, p *timeline.Project) error
	Load(ctx context.Context, id string) (*timeline.Project, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id, newName string) (*timeline.Project, error)
	Import(ctx context.Context, r io.Reader) (*timeline.Project, error)
	CurrentProjectID(ctx context.Context) (string, error)
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// SQLiteStore persists projects as JSON blobs with a summary column set for
// cheap listing.
type SQLiteStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save upserts the project blob, refreshes its summary columns and records it
// as the current project.
func (s *SQLiteStore) Save(ctx context.Context, p *timeline.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	thumbnail := ""
	if len(p.Scenes) > 0 {
		thumbnail = p.Scenes[0].Thumbnail
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, thumbnail, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			thumbnail = excluded.thumbnail,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, nullString(thumbnail), string(data),
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	return s.SetConfig(ctx, currentProjectKey, p.ID)
}

// Load returns the project with the given id, or nil when it does not exist.
// Projects saved by older versions come back normalized: missing collections
// defaulted, zero-value scene attributes filled in.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*timeline.Project, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM projects WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p timeline.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal project %s: %w", id, err)
	}
	p.Normalize()

	if err := s.SetConfig(ctx, currentProjectKey, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns summaries of all saved projects, most recently modified first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, thumbnail, updated_at FROM projects ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var thumbnail sql.NullString
		var updatedAt string
		if err := rows.Scan(&sum.ID, &sum.Name, &thumbnail, &updatedAt); err != nil {
			return nil, err
		}
		sum.Thumbnail = thumbnail.String
		sum.LastModified, _ = time.Parse(time.RFC3339, updatedAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Delete removes the project. If it was the current project, the current
// pointer is cleared.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return err
	}

	current, err := s.GetConfig(ctx, currentProjectKey)
	if err != nil {
		return err
	}
	if current == id {
		_, err = s.db.ExecContext(ctx, "DELETE FROM config WHERE key = ?", currentProjectKey)
		return err
	}
	return nil
}

// Duplicate loads the project, reassigns identity and timestamps, renames it
// and saves the copy. Returns nil when the source does not exist.
func (s *SQLiteStore) Duplicate(ctx context.Context, id, newName string) (*timeline.Project, error) {
	original, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, nil
	}

	dup := original.Clone()
	dup.ID = timeline.NewID()
	dup.Name = newName
	now := time.Now().UTC()
	dup.CreatedAt = now
	dup.UpdatedAt = now

	if err := s.Save(ctx, &dup); err != nil {
		return nil, err
	}
	return &dup, nil
}

// CurrentProjectID returns the id of the most recently saved or loaded
// project, or empty when none is recorded.
func (s *SQLiteStore) CurrentProjectID(ctx context.Context) (string, error) {
	return s.GetConfig(ctx, currentProjectKey)
}

func (s *SQLiteStore) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
