package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/EmrullahAydogan/video-studio/internal/store"
	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

// ErrProjectNotFound is returned when an id resolves to no saved project.
var ErrProjectNotFound = errors.New("project not found")

// Manager maps project ids to open sessions. A project is opened at most
// once; concurrent opens of the same id share the session.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	logger   *slog.Logger
	sessions map[string]*Session
}

func NewManager(st store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:    st,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create makes a fresh project with the given name, saves it and opens a
// session for it.
func (m *Manager) Create(ctx context.Context, name string) (*Session, error) {
	p := timeline.NewProject(name)
	return m.Adopt(ctx, p)
}

// Adopt opens a session for a project built elsewhere (a template instance,
// an import) and persists it.
func (m *Manager) Adopt(ctx context.Context, p timeline.Project) (*Session, error) {
	if err := m.store.Save(ctx, &p); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s := New(p, m.store, m.logger)
	m.sessions[p.ID] = s
	return s, nil
}

// Open returns the session for the given project id, loading the project
// from the store when it is not already open.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	p, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s := New(*p, m.store, m.logger)
	m.sessions[id] = s
	return s, nil
}

// Get returns an already open session without touching the store.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// CloseSession stops playback for the session and drops it from the map.
// The saved project is untouched.
func (m *Manager) CloseSession(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Delete closes any open session for the project and removes it from the
// store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.CloseSession(id)
	return m.store.Delete(ctx, id)
}

// OpenCount reports how many sessions are currently open.
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll shuts down every open session, for service shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
