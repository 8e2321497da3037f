package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EmrullahAydogan/video-studio/internal/ai"
	"github.com/EmrullahAydogan/video-studio/internal/api"
	"github.com/EmrullahAydogan/video-studio/internal/config"
	"github.com/EmrullahAydogan/video-studio/internal/db"
	"github.com/EmrullahAydogan/video-studio/internal/logging"
	"github.com/EmrullahAydogan/video-studio/internal/media"
	"github.com/EmrullahAydogan/video-studio/internal/render"
	"github.com/EmrullahAydogan/video-studio/internal/session"
	"github.com/EmrullahAydogan/video-studio/internal/store"
	"github.com/EmrullahAydogan/video-studio/internal/template"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{cfg.DataDir(), cfg.AssetsDir(), cfg.ExportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting video studio", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	projectStore := store.New(database.Conn())

	authToken, err := ensureAuthToken(projectStore)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║                  VIDEO STUDIO v%-7s                    ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	templates, err := template.Load()
	if err != nil {
		return fmt.Errorf("failed to load template catalog: %w", err)
	}

	sessions := session.NewManager(projectStore, logger)

	renderRepo := render.NewRepository(database.Conn())
	renderQueue := render.NewQueue(renderRepo, render.NewStubEngine(), logger, cfg.ExportsDir(), cfg.RenderPollInterval())

	var aiClient ai.Client
	if cfg.AIBaseURL() != "" && cfg.AIAPIKey() != "" {
		aiClient = ai.NewHTTPClient(cfg.AIBaseURL(), cfg.AIAPIKey(), logger)
		logger.Info("ai generation enabled", "base_url", cfg.AIBaseURL())
	} else {
		aiClient = ai.NewStubClient(logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiServer := api.NewServer(api.ServerConfig{
		Port:        cfg.Port(),
		BaseContext: ctx,
		Store:       projectStore,
		Sessions:    sessions,
		RenderRepo:  renderRepo,
		RenderQueue: renderQueue,
		AIClient:    aiClient,
		Templates:   templates,
		Media:       media.NewLibrary(cfg.AssetsDir(), logger),
		Logger:      logger,
		StartTime:   startTime,
		Version:     config.Version,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		renderQueue.Start(gctx)
		return nil
	})

	g.Go(func() error {
		return apiServer.Start()
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("initiating graceful shutdown")
		sessions.CloseAll()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(st store.Store) (string, error) {
	ctx := context.Background()

	// A read failure must not regenerate the token: overwriting a token that
	// still exists would lock out every configured client.
	existing, err := st.GetConfig(ctx, "auth_token")
	if err != nil {
		return "", fmt.Errorf("read auth token: %w", err)
	}
	if existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := st.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
