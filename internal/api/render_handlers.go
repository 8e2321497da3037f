package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EmrullahAydogan/video-studio/internal/render"
)

func submitRenderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		format := render.Format(req.Format)
		if format == "" {
			format = render.FormatMP4
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}

		p := sess.Project()
		job, err := cfg.RenderQueue.Submit(r.Context(), &p, format)
		if err != nil {
			if errors.Is(err, render.ErrEmptyTimeline) {
				WriteError(w, http.StatusBadRequest, err.Error(), "EMPTY_TIMELINE")
			} else {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			}
			return
		}

		WriteJSON(w, http.StatusAccepted, JobToResponse(job))
	}
}

func projectRendersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		jobs, err := cfg.RenderRepo.ListJobsByProject(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list render jobs", "INTERNAL_ERROR")
			return
		}
		writeJobs(w, jobs)
	}
}

func listRendersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.RenderRepo.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list render jobs", "INTERNAL_ERROR")
			return
		}
		writeJobs(w, jobs)
	}
}

func getRenderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		job, err := cfg.RenderRepo.GetJob(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "render job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}

func writeJobs(w http.ResponseWriter, jobs []*render.Job) {
	resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
	for i, j := range jobs {
		resp.Jobs[i] = JobToResponse(j)
	}
	WriteJSON(w, http.StatusOK, resp)
}
