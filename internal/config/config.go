// Package config provides configuration management for the Cutroom Agent.
// Configuration is loaded from environment variables with sensible defaults.
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
	DefaultPort     = 8712
	DefaultLogLevel = "info"
	DefaultDataDir  = ".cutroom"

	// Environment variable names
	EnvPort     = "CUTROOM_PORT"
	EnvLogLevel = "CUTROOM_LOG_LEVEL"
	EnvDataDir  = "CUTROOM_DATA_DIR"
	EnvFFprobe  = "CUTROOM_FFPROBE"
	EnvHeadless = "CUTROOM_HEADLESS"

	// Probe defaults
	DefaultFFprobeBin     = "ffprobe"
	DefaultProbeTimeout   = 20 // seconds
	EnvProbeTimeoutSecs   = "CUTROOM_PROBE_TIMEOUT_S"
	MaxImportBytesDefault = 2 * 1024 * 1024 * 1024 // 2GB per clip upload
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	MediaDir() string
	FFprobeBin() string
	ProbeTimeout() time.Duration
	MaxImportBytes() int64
	Headless() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port         int
	logLevel     string
	dataDir      string
	ffprobeBin   string
	probeTimeout time.Duration
	headless     bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:         DefaultPort,
		logLevel:     DefaultLogLevel,
		dataDir:      defaultDataDir(),
		ffprobeBin:   DefaultFFprobeBin,
		probeTimeout: DefaultProbeTimeout * time.Second,
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

	if fp := os.Getenv(EnvFFprobe); fp != "" {
		cfg.ffprobeBin = fp
	}

	if ts := os.Getenv(EnvProbeTimeoutSecs); ts != "" {
		secs, err := strconv.Atoi(ts)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvProbeTimeoutSecs)
		}
		cfg.probeTimeout = time.Duration(secs) * time.Second
	}

	if h := os.Getenv(EnvHeadless); h == "1" || h == "true" {
		cfg.headless = true
	}

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

// MediaDir returns the directory holding staged clip media
func (c *EnvConfig) MediaDir() string {
	return filepath.Join(c.dataDir, "media")
}

// FFprobeBin returns the ffprobe binary name or path
func (c *EnvConfig) FFprobeBin() string {
	return c.ffprobeBin
}

// ProbeTimeout returns the per-clip duration probe timeout
func (c *EnvConfig) ProbeTimeout() time.Duration {
	return c.probeTimeout
}

// MaxImportBytes returns the maximum accepted clip upload size
func (c *EnvConfig) MaxImportBytes() int64 {
	return MaxImportBytesDefault
}

// Headless reports whether the system tray should be disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
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
