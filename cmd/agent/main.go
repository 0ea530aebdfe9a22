package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cutroom/cutroom-agent/internal/api"
	"github.com/cutroom/cutroom-agent/internal/config"
	"github.com/cutroom/cutroom-agent/internal/logging"
	"github.com/cutroom/cutroom-agent/internal/playback"
	"github.com/cutroom/cutroom-agent/internal/probe"
	"github.com/cutroom/cutroom-agent/internal/timeline"
	"github.com/cutroom/cutroom-agent/internal/ui"
	"github.com/cutroom/cutroom-agent/internal/ws"
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

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.MediaDir(), 0755); err != nil {
		return fmt.Errorf("failed to create media dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting cutroom agent", "version", config.Version, "data_dir", cfg.DataDir())

	authToken, err := newAuthToken()
	if err != nil {
		return fmt.Errorf("failed to generate auth token: %w", err)
	}

	editorURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port())

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                    CUTROOM AGENT v0.1.0                   ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	hub := ws.NewHub(logger)

	surface := playback.NewRemoteSurface(func(cmd playback.Command) {
		hub.Broadcast(ws.Message{Type: "command", Data: cmd})
	}, logger)

	var prober timeline.Prober
	ffprobe := probe.NewFFprobe(cfg.FFprobeBin(), logger)
	if ffprobe.Available() {
		prober = ffprobe
	} else {
		logger.Warn("ffprobe not found, duration probing disabled", "bin", cfg.FFprobeBin())
		prober = probe.NewStub(logger)
	}

	engine := timeline.NewEngine(timeline.Config{
		Surface:      surface,
		Prober:       prober,
		ProbeTimeout: cfg.ProbeTimeout(),
		Logger:       logger,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	// The change callback runs on handler goroutines once the server is
	// up, so the tray pointer must be settled before either starts.
	var tray *ui.Tray
	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray = ui.NewTray(ui.TrayConfig{
			Logger: logger,
			OnOpenUI: func() {
				if err := openBrowser(editorURL); err != nil {
					logger.Error("failed to open editor", "error", err)
				}
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
	}

	engine.SetOnChange(func(snap timeline.Snapshot) {
		hub.Broadcast(ws.Message{Type: "state", Data: api.SnapshotToResponse(snap)})
		if tray != nil {
			tray.Update(snap)
		}
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		MediaDir:       cfg.MediaDir(),
		MaxImportBytes: cfg.MaxImportBytes(),
		AuthToken:      authToken,
		Engine:         engine,
		Streamer:       playback.NewStreamer(logger),
		Hub:            hub,
		Logger:         logger,
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	if tray != nil {
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	hub.Close()

	if err := engine.Close(); err != nil {
		logger.Error("failed to close engine", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newAuthToken generates the per-run bearer token printed at startup. A
// fresh token every run keeps stale credentials from lingering.
func newAuthToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(tokenBytes), nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
