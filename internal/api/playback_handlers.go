package api

import (
	"encoding/json"
	"net/http"
)

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		// The loop must outlive the request, so it is bound to the server's
		// base context and stopped by pause, by a later play, or at shutdown.
		sess.Play(cfg.baseContext())
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.Pause()
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func togglePlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.TogglePlay(cfg.baseContext())
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.Seek(req.Time)
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func speedHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SpeedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		if err := sess.SetSpeed(req.Speed); err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func loopHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.SetLoop(req.Loop)
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func volumeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VolumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.SetVolume(req.Volume)
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func muteHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.ToggleMute()
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func stepHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StepRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		dir := 1
		if req.Direction == "backward" {
			dir = -1
		} else if req.Direction != "forward" {
			WriteError(w, http.StatusBadRequest, "direction must be forward or backward", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.StepFrame(dir)
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func skipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SkipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Delta == 0 {
			WriteError(w, http.StatusBadRequest, "delta is required", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.Skip(req.Delta)
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func zoomHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ZoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.SetZoom(req.Zoom)
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func snappingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SnappingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		sess.SetSnapping(req.Enabled, req.ThresholdPx)
		WriteJSON(w, http.StatusOK, stateResponse(sess))
	}
}

func snapHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SnapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess, ok := openSession(w, r, cfg)
		if !ok {
			return
		}
		snapped := sess.Snap(req.Time)
		WriteJSON(w, http.StatusOK, SnapResponse{
			Time:    snapped,
			Snapped: snapped != req.Time,
		})
	}
}
