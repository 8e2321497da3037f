package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/EmrullahAydogan/video-studio/internal/render"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Store, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Post("/projects/import", importProjectHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Patch("/projects/{id}", renameProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))
		r.Post("/projects/{id}/duplicate", duplicateProjectHandler(cfg))
		r.Get("/projects/{id}/export", exportProjectHandler(cfg))
		r.Get("/projects/{id}/state", sessionStateHandler(cfg))
		r.Post("/projects/{id}/undo", undoHandler(cfg))
		r.Post("/projects/{id}/redo", redoHandler(cfg))

		r.Post("/projects/{id}/scenes", addSceneHandler(cfg))
		r.Post("/projects/{id}/scenes/reorder", reorderScenesHandler(cfg))
		r.Post("/projects/{id}/scenes/select", selectSceneHandler(cfg))
		r.Patch("/projects/{id}/scenes/{sceneID}", updateSceneHandler(cfg))
		r.Delete("/projects/{id}/scenes/{sceneID}", deleteSceneHandler(cfg))
		r.Post("/projects/{id}/scenes/{sceneID}/duplicate", duplicateSceneHandler(cfg))
		r.Post("/projects/{id}/scenes/{sceneID}/split", splitSceneHandler(cfg))

		r.Post("/projects/{id}/audio", addAudioHandler(cfg))
		r.Patch("/projects/{id}/audio/{trackID}", updateAudioHandler(cfg))
		r.Delete("/projects/{id}/audio/{trackID}", deleteAudioHandler(cfg))
		r.Post("/projects/{id}/audio/{trackID}/duplicate", duplicateAudioHandler(cfg))

		r.Post("/projects/{id}/markers", addMarkerHandler(cfg))
		r.Patch("/projects/{id}/markers/{markerID}", updateMarkerHandler(cfg))
		r.Delete("/projects/{id}/markers/{markerID}", deleteMarkerHandler(cfg))
		r.Post("/projects/{id}/markers/{markerID}/jump", jumpToMarkerHandler(cfg))

		r.Post("/projects/{id}/playback/play", playHandler(cfg))
		r.Post("/projects/{id}/playback/pause", pauseHandler(cfg))
		r.Post("/projects/{id}/playback/toggle", togglePlayHandler(cfg))
		r.Post("/projects/{id}/playback/seek", seekHandler(cfg))
		r.Post("/projects/{id}/playback/speed", speedHandler(cfg))
		r.Post("/projects/{id}/playback/loop", loopHandler(cfg))
		r.Post("/projects/{id}/playback/volume", volumeHandler(cfg))
		r.Post("/projects/{id}/playback/mute", muteHandler(cfg))
		r.Post("/projects/{id}/playback/step", stepHandler(cfg))
		r.Post("/projects/{id}/playback/skip", skipHandler(cfg))

		r.Post("/projects/{id}/timeline/zoom", zoomHandler(cfg))
		r.Post("/projects/{id}/timeline/snapping", snappingHandler(cfg))
		r.Post("/projects/{id}/timeline/snap", snapHandler(cfg))

		r.Post("/projects/{id}/render", submitRenderHandler(cfg))
		r.Get("/projects/{id}/renders", projectRendersHandler(cfg))
		r.Get("/renders", listRendersHandler(cfg))
		r.Get("/renders/{id}", getRenderHandler(cfg))

		r.Get("/templates", listTemplatesHandler(cfg))

		r.Post("/ai/images", generateImageHandler(cfg))
		r.Post("/ai/videos", generateVideoHandler(cfg))
		r.Get("/ai/videos/{jobID}", videoStatusHandler(cfg))

		r.Get("/media/*", mediaHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summaries, _ := cfg.Store.List(ctx)
		jobs, _ := cfg.RenderRepo.ListJobs(ctx, 10)

		state := "idle"
		var activeRender *JobResponse
		rendersActive := 0
		lastError := ""

		if cfg.RenderQueue != nil && cfg.RenderQueue.IsPaused() {
			state = "paused"
		}

		for _, j := range jobs {
			if j.Status == render.JobStatusActive {
				state = "rendering"
				resp := JobToResponse(j)
				activeRender = &resp
				rendersActive++
			}
			if j.Status == render.JobStatusFailed && lastError == "" {
				lastError = j.Error
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		resp := StatusResponse{
			State:         state,
			ProjectsCount: len(summaries),
			OpenSessions:  cfg.Sessions.OpenCount(),
			RendersActive: rendersActive,
			ActiveRender:  activeRender,
			LastError:     lastError,
		}

		if vm, err := mem.VirtualMemory(); err == nil {
			resp.Memory = &MemoryStatus{
				UsedPercent: vm.UsedPercent,
				TotalMB:     vm.Total / 1024 / 1024,
				AvailableMB: vm.Available / 1024 / 1024,
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}
