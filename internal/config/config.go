// Package config provides configuration management for the Video Studio
// service. Configuration is loaded from environment variables with sensible
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8787
	DefaultLogLevel = "info"
	DefaultDataDir  = ".video-studio"

	// Environment variable names
	EnvPort     = "VIDEOSTUDIO_PORT"
	EnvLogLevel = "VIDEOSTUDIO_LOG_LEVEL"
	EnvDataDir  = "VIDEOSTUDIO_DATA_DIR"

	// AI gateway environment variable names
	EnvAIBaseURL = "VIDEOSTUDIO_AI_BASE_URL"
	EnvAIAPIKey  = "VIDEOSTUDIO_AI_API_KEY"

	// Database filename
	DBFilename = "studio.db"

	// Render queue defaults
	DefaultRenderPollSeconds    = 2
	DefaultRenderTimeoutSeconds = 600
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	AssetsDir() string
	ExportsDir() string
	AIBaseURL() string
	AIAPIKey() string
	RenderPollInterval() time.Duration
	RenderTimeout() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string

	aiBaseURL string
	aiAPIKey  string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:  defaultDataDir(),
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.aiBaseURL = os.Getenv(EnvAIBaseURL)
	cfg.aiAPIKey = os.Getenv(EnvAIAPIKey)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// AssetsDir returns the directory holding imported media assets
func (c *EnvConfig) AssetsDir() string {
	return filepath.Join(c.dataDir, "assets")
}

// ExportsDir returns the directory render jobs write their output to
func (c *EnvConfig) ExportsDir() string {
	return filepath.Join(c.dataDir, "exports")
}

func (c *EnvConfig) AIBaseURL() string {
	return c.aiBaseURL
}

func (c *EnvConfig) AIAPIKey() string {
	return c.aiAPIKey
}

func (c *EnvConfig) RenderPollInterval() time.Duration {
	return time.Duration(DefaultRenderPollSeconds) * time.Second
}

func (c *EnvConfig) RenderTimeout() time.Duration {
	return time.Duration(DefaultRenderTimeoutSeconds) * time.Second
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
