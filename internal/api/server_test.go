package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/ai"
	"github.com/EmrullahAydogan/video-studio/internal/db"
	"github.com/EmrullahAydogan/video-studio/internal/media"
	"github.com/EmrullahAydogan/video-studio/internal/render"
	"github.com/EmrullahAydogan/video-studio/internal/session"
	"github.com/EmrullahAydogan/video-studio/internal/store"
	"github.com/EmrullahAydogan/video-studio/internal/template"
	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

const testToken = "test-token"

type testEnv struct {
	router   http.Handler
	store    *store.SQLiteStore
	sessions *session.Manager
	repo     render.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	database, err := db.New(filepath.Join(t.TempDir(), "studio.db"), logger)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	st := store.New(database.Conn())
	if err := st.SetConfig(context.Background(), "auth_token", testToken); err != nil {
		t.Fatalf("seed auth token: %v", err)
	}

	sessions := session.NewManager(st, logger)
	t.Cleanup(sessions.CloseAll)

	repo := render.NewRepository(database.Conn())
	queue := render.NewQueue(repo, render.NewStubEngine(), logger, t.TempDir(), time.Second)

	catalog, err := template.Load()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}

	cfg := ServerConfig{
		Store:       st,
		Sessions:    sessions,
		RenderRepo:  repo,
		RenderQueue: queue,
		AIClient:    ai.NewStubClient(logger),
		Templates:   catalog,
		Media:       media.NewLibrary(t.TempDir(), logger),
		Logger:      logger,
		StartTime:   time.Now(),
		Version:     "test",
	}

	return &testEnv{
		router:   NewRouter(cfg),
		store:    st,
		sessions: sessions,
		repo:     repo,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (e *testEnv) createProject(t *testing.T, name string) ProjectResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/projects", CreateProjectRequest{Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[ProjectResponse](t, rec)
}

func (e *testEnv) addScene(t *testing.T, projectID string, s timeline.Scene) timeline.Scene {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/projects/"+projectID+"/scenes", s)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add scene: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[SceneResponse](t, rec).Scene
}

func TestHealthIsOpen(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[HealthResponse](t, rec)
	if resp.Status != "ok" || resp.Version != "test" {
		t.Fatalf("health = %+v", resp)
	}
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"wrong token", "Bearer wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Code != "UNAUTHORIZED" {
				t.Fatalf("code = %q", resp.Code)
			}
		})
	}
}

func TestCreateAndGetProject(t *testing.T) {
	e := newTestEnv(t)

	created := e.createProject(t, "My Film")
	if created.Name != "My Film" || created.ID == "" {
		t.Fatalf("created = %+v", created)
	}

	rec := e.do(t, http.MethodGet, "/projects/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	got := decode[ProjectResponse](t, rec)
	if got.ID != created.ID {
		t.Fatalf("got id %q, want %q", got.ID, created.ID)
	}

	list := decode[ProjectListResponse](t, e.do(t, http.MethodGet, "/projects", nil))
	if len(list.Projects) != 1 || list.Projects[0].Name != "My Film" {
		t.Fatalf("list = %+v", list)
	}
}

func TestCreateProject_Validation(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/projects", CreateProjectRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateProjectFromTemplate(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/projects", CreateProjectRequest{Template: "instagram-story"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	p := decode[ProjectResponse](t, rec)
	if len(p.Scenes) != 3 {
		t.Fatalf("scenes = %d, want 3 from template", len(p.Scenes))
	}
	if p.Resolution.Width != 1080 || p.Resolution.Height != 1920 {
		t.Fatalf("resolution = %dx%d", p.Resolution.Width, p.Resolution.Height)
	}

	rec = e.do(t, http.MethodPost, "/projects", CreateProjectRequest{Template: "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown template status = %d, want 400", rec.Code)
	}
}

func TestGetProject_Missing(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/projects/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSceneLifecycle(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "Scenes")

	a := e.addScene(t, p.ID, timeline.Scene{Name: "a", Duration: 4})
	b := e.addScene(t, p.ID, timeline.Scene{Name: "b", Duration: 2})

	// Partial update.
	rec := e.do(t, http.MethodPatch, "/projects/"+p.ID+"/scenes/"+a.ID,
		map[string]any{"name": "a2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d body %s", rec.Code, rec.Body.String())
	}

	// Reorder swaps the two scenes and repacks from zero.
	rec = e.do(t, http.MethodPost, "/projects/"+p.ID+"/scenes/reorder",
		ReorderRequest{SceneIDs: []string{b.ID, a.ID}})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: status %d body %s", rec.Code, rec.Body.String())
	}
	got := decode[ProjectResponse](t, e.do(t, http.MethodGet, "/projects/"+p.ID, nil))
	if got.Scenes[0].ID != b.ID || got.Scenes[0].StartTime != 0 {
		t.Fatalf("reorder result wrong: %+v", got.Scenes)
	}
	if got.Scenes[1].Name != "a2" || got.Scenes[1].StartTime != 2 {
		t.Fatalf("second scene wrong: %+v", got.Scenes[1])
	}

	// Partial permutation is rejected.
	rec = e.do(t, http.MethodPost, "/projects/"+p.ID+"/scenes/reorder",
		ReorderRequest{SceneIDs: []string{a.ID}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("partial reorder status = %d, want 400", rec.Code)
	}

	// Delete.
	rec = e.do(t, http.MethodDelete, "/projects/"+p.ID+"/scenes/"+b.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = e.do(t, http.MethodDelete, "/projects/"+p.ID+"/scenes/"+b.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double delete status = %d, want 404", rec.Code)
	}
}

func TestSplitScene(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "Split")
	s := e.addScene(t, p.ID, timeline.Scene{Name: "long", Duration: 10})

	rec := e.do(t, http.MethodPost, "/projects/"+p.ID+"/scenes/"+s.ID+"/split",
		SplitRequest{Time: 4})
	if rec.Code != http.StatusOK {
		t.Fatalf("split: status %d body %s", rec.Code, rec.Body.String())
	}
	got := decode[ProjectResponse](t, rec)
	if len(got.Scenes) != 2 {
		t.Fatalf("scenes = %d, want 2 after split", len(got.Scenes))
	}

	rec = e.do(t, http.MethodPost, "/projects/"+p.ID+"/scenes/"+got.Scenes[0].ID+"/split",
		SplitRequest{Time: 99})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-bounds split status = %d, want 400", rec.Code)
	}
}

func TestUndoRedoEndpoints(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "History")
	e.addScene(t, p.ID, timeline.Scene{Name: "a", Duration: 3})

	state := decode[SessionStateResponse](t, e.do(t, http.MethodGet, "/projects/"+p.ID+"/state", nil))
	if !state.CanUndo || state.CanRedo {
		t.Fatalf("state = %+v", state)
	}

	got := decode[ProjectResponse](t, e.do(t, http.MethodPost, "/projects/"+p.ID+"/undo", nil))
	if len(got.Scenes) != 0 {
		t.Fatalf("undo left %d scenes", len(got.Scenes))
	}

	got = decode[ProjectResponse](t, e.do(t, http.MethodPost, "/projects/"+p.ID+"/redo", nil))
	if len(got.Scenes) != 1 {
		t.Fatalf("redo restored %d scenes", len(got.Scenes))
	}
}

func TestMarkersAndSnapEndpoint(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "Snappy")
	e.addScene(t, p.ID, timeline.Scene{Name: "a", Duration: 8})

	rec := e.do(t, http.MethodPost, "/projects/"+p.ID+"/markers",
		timeline.Marker{Name: "beat", Time: 2.5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add marker: status %d body %s", rec.Code, rec.Body.String())
	}

	snap := decode[SnapResponse](t, e.do(t, http.MethodPost, "/projects/"+p.ID+"/timeline/snap",
		SnapRequest{Time: 2.56}))
	if !snap.Snapped || snap.Time != 2.5 {
		t.Fatalf("snap = %+v, want snapped to 2.5", snap)
	}

	// Far from every candidate: unchanged.
	snap = decode[SnapResponse](t, e.do(t, http.MethodPost, "/projects/"+p.ID+"/timeline/snap",
		SnapRequest{Time: 3.5}))
	if snap.Snapped {
		t.Fatalf("snap = %+v, want passthrough", snap)
	}
}

func TestPlaybackEndpoints(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "Player")
	e.addScene(t, p.ID, timeline.Scene{Name: "a", Duration: 10})

	rec := e.do(t, http.MethodPost, "/projects/"+p.ID+"/playback/seek", SeekRequest{Time: 4})
	if rec.Code != http.StatusOK {
		t.Fatalf("seek: status %d", rec.Code)
	}
	state := decode[SessionStateResponse](t, rec)
	if state.State.CurrentTime != 4 {
		t.Fatalf("current time = %g, want 4", state.State.CurrentTime)
	}

	rec = e.do(t, http.MethodPost, "/projects/"+p.ID+"/playback/speed", SpeedRequest{Speed: 1.3})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad speed status = %d, want 400", rec.Code)
	}
	rec = e.do(t, http.MethodPost, "/projects/"+p.ID+"/playback/speed", SpeedRequest{Speed: 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("speed: status %d", rec.Code)
	}

	state = decode[SessionStateResponse](t, e.do(t, http.MethodPost,
		"/projects/"+p.ID+"/playback/play", nil))
	if !state.State.IsPlaying {
		t.Fatal("not playing after play")
	}
	state = decode[SessionStateResponse](t, e.do(t, http.MethodPost,
		"/projects/"+p.ID+"/playback/pause", nil))
	if state.State.IsPlaying {
		t.Fatal("still playing after pause")
	}

	rec = e.do(t, http.MethodPost, "/projects/"+p.ID+"/playback/step",
		StepRequest{Direction: "sideways"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad step direction status = %d, want 400", rec.Code)
	}
}

func TestRenderSubmission(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "Renderable")

	// Empty timeline is rejected up front.
	rec := e.do(t, http.MethodPost, "/projects/"+p.ID+"/render", RenderRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty render status = %d, want 400", rec.Code)
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Code != "EMPTY_TIMELINE" {
		t.Fatalf("code = %q", resp.Code)
	}

	e.addScene(t, p.ID, timeline.Scene{Name: "a", Duration: 5})

	rec = e.do(t, http.MethodPost, "/projects/"+p.ID+"/render", RenderRequest{})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("render status = %d body %s", rec.Code, rec.Body.String())
	}
	job := decode[JobResponse](t, rec)
	if job.Status != "queued" || job.Format != "mp4" {
		t.Fatalf("job = %+v", job)
	}

	jobs := decode[JobsResponse](t, e.do(t, http.MethodGet, "/projects/"+p.ID+"/renders", nil))
	if len(jobs.Jobs) != 1 || jobs.Jobs[0].ID != job.ID {
		t.Fatalf("project renders = %+v", jobs)
	}

	got := decode[JobResponse](t, e.do(t, http.MethodGet, "/renders/"+job.ID, nil))
	if got.ID != job.ID {
		t.Fatalf("get render = %+v", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "Traveler")
	e.addScene(t, p.ID, timeline.Scene{Name: "a", Duration: 5})

	rec := e.do(t, http.MethodGet, "/projects/"+p.ID+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Fatal("missing Content-Disposition")
	}

	req := httptest.NewRequest(http.MethodPost, "/projects/import", bytes.NewReader(rec.Body.Bytes()))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec2 := httptest.NewRecorder()
	e.router.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("import: status %d body %s", rec2.Code, rec2.Body.String())
	}
	imported := decode[ProjectResponse](t, rec2)
	if imported.ID == p.ID {
		t.Fatal("import kept the source id")
	}
	if len(imported.Scenes) != 1 {
		t.Fatalf("imported scenes = %d", len(imported.Scenes))
	}

	req = httptest.NewRequest(http.MethodPost, "/projects/import", bytes.NewReader([]byte("{broken")))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec3 := httptest.NewRecorder()
	e.router.ServeHTTP(rec3, req)
	if rec3.Code != http.StatusBadRequest {
		t.Fatalf("malformed import status = %d, want 400", rec3.Code)
	}
	if decode[ErrorResponse](t, rec3).Code != "INVALID_PROJECT_FILE" {
		t.Fatal("wrong error code for malformed import")
	}
}

func TestDeleteProject(t *testing.T) {
	e := newTestEnv(t)
	p := e.createProject(t, "Doomed")

	rec := e.do(t, http.MethodDelete, "/projects/"+p.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = e.do(t, http.MethodGet, "/projects/"+p.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestTemplatesEndpoint(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Templates []template.Template `json:"templates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Templates) == 0 {
		t.Fatal("no templates listed")
	}
}

func TestAIGenerationEndpoints(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/ai/images", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty prompt status = %d, want 400", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/ai/images", map[string]string{"prompt": "a sunset"})
	if rec.Code != http.StatusOK {
		t.Fatalf("image status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/ai/videos", map[string]string{"prompt": "a sunrise"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("video status = %d body %s", rec.Code, rec.Body.String())
	}
	var job ai.VideoJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode video job: %v", err)
	}

	rec = e.do(t, http.MethodGet, "/ai/videos/"+job.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("video status poll = %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/ai/videos/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown video job status = %d, want 404", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
}
