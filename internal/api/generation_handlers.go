package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EmrullahAydogan/video-studio/internal/ai"
)

func listTemplatesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"templates": cfg.Templates.List(),
		})
	}
}

func generateImageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ai.ImageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Prompt == "" {
			WriteError(w, http.StatusBadRequest, "prompt is required", "BAD_REQUEST")
			return
		}

		result, err := cfg.AIClient.GenerateImage(r.Context(), req)
		if err != nil {
			writeGenerationError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)
	}
}

func generateVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ai.VideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Prompt == "" {
			WriteError(w, http.StatusBadRequest, "prompt is required", "BAD_REQUEST")
			return
		}

		job, err := cfg.AIClient.GenerateVideo(r.Context(), req)
		if err != nil {
			writeGenerationError(w, err)
			return
		}
		WriteJSON(w, http.StatusAccepted, job)
	}
}

func videoStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		job, err := cfg.AIClient.VideoStatus(r.Context(), jobID)
		if err != nil {
			writeGenerationError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, job)
	}
}

func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "*")
		if name == "" {
			WriteError(w, http.StatusBadRequest, "asset path required", "BAD_REQUEST")
			return
		}
		if err := cfg.Media.ServeAsset(w, r, name); err != nil {
			cfg.Logger.Error("media serve error", "asset", name, "error", err)
		}
	}
}

func writeGenerationError(w http.ResponseWriter, err error) {
	var genErr *ai.GenerationError
	if errors.As(err, &genErr) {
		status := http.StatusBadGateway
		if genErr.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		} else if genErr.StatusCode >= 400 && genErr.StatusCode < 500 {
			status = http.StatusBadRequest
		}
		WriteError(w, status, err.Error(), "GENERATION_FAILED")
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
}
