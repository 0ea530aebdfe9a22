package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type Tray struct {
	logger *slog.Logger

	stateItem    *systray.MenuItem
	clipsItem    *systray.MenuItem
	durationItem *systray.MenuItem

	mu sync.Mutex

	onOpenUI func()
	onQuit   func()
}

type TrayConfig struct {
	Logger   *slog.Logger
	OnOpenUI func()
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		logger:   cfg.Logger,
		onOpenUI: cfg.OnOpenUI,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Cutroom")
	systray.SetTooltip("Cutroom Agent")

	// Update can already be racing in from the change callback; the item
	// fields are published under the same lock it reads them with.
	t.mu.Lock()
	t.stateItem = systray.AddMenuItem("State: Idle", "Current playback state")
	t.stateItem.Disable()

	t.clipsItem = systray.AddMenuItem("Clips: 0", "Clips on the timeline")
	t.clipsItem.Disable()

	t.durationItem = systray.AddMenuItem("Duration: 0.0s", "Total timeline duration")
	t.durationItem.Disable()
	t.mu.Unlock()

	systray.AddSeparator()

	openItem := systray.AddMenuItem("Open Editor...", "Open the editor in a browser")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Cutroom Agent")

	go func() {
		for {
			select {
			case <-openItem.ClickedCh:
				if t.onOpenUI != nil {
					t.onOpenUI()
				}
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

// Update refreshes the tray labels from an engine snapshot. Safe to call
// before onReady has run.
func (t *Tray) Update(snap timeline.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stateItem == nil {
		return
	}
	t.stateItem.SetTitle("State: " + titleCase(snap.State.String()))
	t.clipsItem.SetTitle(fmt.Sprintf("Clips: %d", len(snap.Clips)))
	t.durationItem.SetTitle(fmt.Sprintf("Duration: %.1fs", snap.ActualTotal))
}

func (t *Tray) Quit() {
	systray.Quit()
}

func titleCase(s string) string {
	switch s {
	case "idle":
		return "Idle"
	case "active":
		return "Active"
	case "awaiting_load":
		return "Loading"
	default:
		return s
	}
}
