package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EmrullahAydogan/video-studio/internal/session"
	"github.com/EmrullahAydogan/video-studio/internal/timeline"
)

func addSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data timeline.Scene
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		var added timeline.Scene
		var err error
		if r.URL.Query().Get("append") == "true" {
			added, err = sess.AppendScene(r.Context(), data)
		} else {
			added, err = sess.AddScene(r.Context(), data)
		}
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, SceneResponse{Scene: added})
	}
}

func updateSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u timeline.SceneUpdate
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.UpdateScene(r.Context(), chi.URLParam(r, "sceneID"), u); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func deleteSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.DeleteScene(r.Context(), chi.URLParam(r, "sceneID")); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func reorderScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.ReorderScenes(r.Context(), req.SceneIDs); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func duplicateSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		dup, err := sess.DuplicateScene(r.Context(), chi.URLParam(r, "sceneID"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, SceneResponse{Scene: dup})
	}
}

func splitSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SplitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.SplitScene(r.Context(), chi.URLParam(r, "sceneID"), req.Time); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func selectSceneHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.SelectScene(req.SceneID); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func addAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data timeline.AudioTrack
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		added, err := sess.AddAudioTrack(r.Context(), data)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, AudioTrackResponse{AudioTrack: added})
	}
}

func updateAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u timeline.AudioTrackUpdate
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.UpdateAudioTrack(r.Context(), chi.URLParam(r, "trackID"), u); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func deleteAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.DeleteAudioTrack(r.Context(), chi.URLParam(r, "trackID")); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func duplicateAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		dup, err := sess.DuplicateAudioTrack(r.Context(), chi.URLParam(r, "trackID"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, AudioTrackResponse{AudioTrack: dup})
	}
}

func addMarkerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data timeline.Marker
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		added, err := sess.AddMarker(r.Context(), data)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, MarkerResponse{Marker: added})
	}
}

func updateMarkerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u timeline.MarkerUpdate
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.UpdateMarker(r.Context(), chi.URLParam(r, "markerID"), u); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(sess.Project()))
	}
}

func deleteMarkerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.DeleteMarker(r.Context(), chi.URLParam(r, "markerID")); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func jumpToMarkerHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.JumpToMarker(chi.URLParam(r, "markerID")); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

// writeSessionError maps session errors to HTTP status codes.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSceneNotFound),
		errors.Is(err, session.ErrAudioTrackNotFound),
		errors.Is(err, session.ErrMarkerNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, session.ErrInvalidSplitTime),
		errors.Is(err, session.ErrInvalidReorder),
		errors.Is(err, session.ErrInvalidDuration),
		errors.Is(err, session.ErrInvalidSpeed):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
