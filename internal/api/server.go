// Package api exposes the editor over HTTP: project lifecycle, timeline
// mutations, playback control, snapping, rendering, templates, AI generation
// and media serving.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/EmrullahAydogan/video-studio/internal/ai"
	"github.com/EmrullahAydogan/video-studio/internal/media"
	"github.com/EmrullahAydogan/video-studio/internal/render"
	"github.com/EmrullahAydogan/video-studio/internal/session"
	"github.com/EmrullahAydogan/video-studio/internal/store"
	"github.com/EmrullahAydogan/video-studio/internal/template"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port int
	// BaseContext is the service lifetime context. Playback tick loops are
	// bound to it rather than to the request that started them.
	BaseContext context.Context
	Store       store.Store
	Sessions    *session.Manager
	RenderRepo  render.Repository
	RenderQueue *render.Queue
	AIClient    ai.Client
	Templates   *template.Catalog
	Media       *media.Library
	Logger      *slog.Logger
	StartTime   time.Time
	Version     string
}

func (cfg ServerConfig) baseContext() context.Context {
	if cfg.BaseContext != nil {
		return cfg.BaseContext
	}
	return context.Background()
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
