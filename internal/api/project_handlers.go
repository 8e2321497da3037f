package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EmrullahAydogan/video-studio/internal/session"
	"github.com/EmrullahAydogan/video-studio/internal/store"
	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := cfg.Store.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		current, _ := cfg.Store.CurrentProjectID(r.Context())

		resp := ProjectListResponse{
			Projects: make([]ProjectSummaryResponse, len(summaries)),
			Current:  current,
		}
		for i, s := range summaries {
			resp.Projects[i] = SummaryToResponse(s)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" && req.Template == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		var sess *session.Session
		var err error
		if req.Template != "" {
			p, terr := cfg.Templates.Instantiate(req.Template, req.Name)
			if terr != nil {
				WriteError(w, http.StatusBadRequest, terr.Error(), "BAD_REQUEST")
				return
			}
			sess, err = cfg.Sessions.Adopt(r.Context(), p)
		} else {
			sess, err = cfg.Sessions.Create(r.Context(), req.Name)
		}
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusCreated, ProjectToResponse(sess.Project()))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func renameProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenameProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.Rename(r.Context(), req.Name)
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "project id required", "BAD_REQUEST")
			return
		}
		if err := cfg.Sessions.Delete(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func duplicateProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req DuplicateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		original, err := cfg.Store.Load(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if original == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}

		name := req.Name
		if name == "" {
			name = original.Name + " (Copy)"
		}

		dup, err := cfg.Store.Duplicate(r.Context(), id, name)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(*dup))
	}
}

func importProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Store.Import(r.Context(), r.Body)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrParse):
				WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_PROJECT_FILE")
			case errors.Is(err, store.ErrReadFile):
				WriteError(w, http.StatusBadRequest, err.Error(), "READ_FAILED")
			default:
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			}
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(*p))
	}
}

func exportProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Prefer the live session state over the stored blob so unsaved
		// in-flight edits are included.
		var p *timeline.Project
		if sess, ok := cfg.Sessions.Get(id); ok {
			live := sess.Project()
			p = &live
		} else {
			loaded, err := cfg.Store.Load(r.Context(), id)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			p = loaded
		}
		if p == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}

		data, err := store.ExportJSON(p)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to serialize project", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+store.ExportFilename(p)+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func sessionStateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.Undo(r.Context())
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func redoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.Redo(r.Context())
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

// openSession resolves the {id} route param to an editing session, writing
// the error response itself when the project does not exist.
func openSession(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "project id required", "BAD_REQUEST")
		return nil, false
	}

	sess, err := cfg.Sessions.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrProjectNotFound) {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
		} else {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		}
		return nil, false
	}
	return sess, true
}

func stateResponse(sess *session.Session) SessionStateResponse {
	return SessionStateResponse{
		State:         sess.State(),
		TotalDuration: sess.TotalDuration(),
		CanUndo:       sess.CanUndo(),
		CanRedo:       sess.CanRedo(),
	}
}
