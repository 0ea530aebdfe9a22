package timeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cutroom/cutroom-agent/internal/media"
)

// ErrClipNotFound is returned when an operation that must report its
// outcome references an unknown clip. Seek and placement never return it;
// those degrade to their documented fallbacks instead.
var ErrClipNotFound = errors.New("clip not found")

// Prober resolves a media file's duration in seconds. Implementations
// return 0 (with or without an error) when no usable value exists.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Snapshot is the engine's externally visible state: the ordered clips,
// the derived layout, the global scrub position and the continuity state.
type Snapshot struct {
	Clips        []ClipInfo
	Entries      []Entry
	ActualTotal  float64
	Percent      float64
	ActiveClipID string
	State        State
}

// ClipInfo is the read-only clip view handed to collaborators.
type ClipInfo struct {
	ID        string
	Name      string
	SizeLabel string
	MimeType  string
	Duration  float64
	Track     int
}

// Config carries the engine's collaborators.
type Config struct {
	Surface      Surface
	Prober       Prober // nil disables duration probing
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

// Engine owns the ordered clip sequence and the global scrub position.
// Every operation runs to completion under one lock before the next event
// is processed; the only asynchrony is between a surface swap and its
// metadata event, bridged by the controller's single pending-seek slot.
type Engine struct {
	mu           sync.Mutex
	registry     *Registry
	layout       Layout
	percent      float64
	controller   *Controller
	prober       Prober
	probeTimeout time.Duration
	logger       *slog.Logger
	onChange     func(Snapshot)
	closed       bool
}

func NewEngine(cfg Config) *Engine {
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Engine{
		registry:     NewRegistry(),
		controller:   NewController(cfg.Surface),
		prober:       cfg.Prober,
		probeTimeout: timeout,
		logger:       cfg.Logger,
	}
}

// SetOnChange registers the observer notified with a fresh snapshot after
// every state change. Must be called before the engine starts taking
// events.
func (e *Engine) SetOnChange(fn func(Snapshot)) {
	e.onChange = fn
}

// ImportClip appends a new clip to the end of the sequence on track 0 and
// starts the async duration probe. The first import becomes the default
// active playback target.
func (e *Engine) ImportClip(name string, res *media.Resource, sizeLabel, mimeType string) (ClipInfo, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ClipInfo{}, errors.New("engine closed")
	}

	clip := &Clip{
		ID:        NewID(),
		Name:      name,
		Resource:  res,
		SizeLabel: sizeLabel,
		MimeType:  mimeType,
	}
	e.registry.Append(clip)
	e.layout = ComputeLayout(e.registry.Clips())

	if e.controller.Active() == nil {
		e.controller.Select(clip, 0)
		if p, ok := e.layout.StartPercent(clip.ID); ok {
			e.percent = p
		}
	}

	info := clipInfo(clip)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Info("clip imported", "clip_id", info.ID, "name", name, "mime_type", mimeType)
	}
	e.notify(snap)

	if e.prober != nil && res != nil {
		go e.probeDuration(info.ID, res.Path())
	}
	return info, nil
}

func (e *Engine) probeDuration(clipID, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.probeTimeout)
	defer cancel()

	seconds, err := e.prober.Duration(ctx, path)
	if err != nil {
		// ProbeFailure is absorbed: the floor-duration rule keeps the clip
		// visible and selectable at duration 0.
		if e.logger != nil {
			e.logger.Warn("duration probe failed", "clip_id", clipID, "error", err)
		}
		seconds = 0
	}
	e.SetClipDuration(clipID, seconds)
}

// SetClipDuration records a probe result that may arrive long after the
// clip was imported and laid out. Unknown ids are ignored; the clip was
// removed while the probe ran.
func (e *Engine) SetClipDuration(clipID string, seconds float64) {
	e.mu.Lock()
	if !e.registry.SetDuration(clipID, seconds) {
		e.mu.Unlock()
		return
	}
	e.layout = ComputeLayout(e.registry.Clips())
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Info("clip duration resolved", "clip_id", clipID, "duration_s", seconds)
	}
	e.notify(snap)
}

// RemoveClip drops a clip from the sequence and releases its media
// resource. Removing the active clip falls back to the sequence head;
// removing the last clip returns the controller to idle.
func (e *Engine) RemoveClip(clipID string) error {
	e.mu.Lock()
	clip := e.registry.Remove(clipID)
	if clip == nil {
		e.mu.Unlock()
		return ErrClipNotFound
	}
	e.layout = ComputeLayout(e.registry.Clips())

	active := e.controller.Active()
	if e.registry.Len() == 0 {
		e.controller.Reset()
		e.percent = 0
	} else if active != nil && active.ID == clipID {
		head := e.registry.Clips()[0]
		e.controller.Reset()
		e.controller.Select(head, 0)
		if p, ok := e.layout.StartPercent(head.ID); ok {
			e.percent = p
		} else {
			e.percent = 0
		}
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if err := clip.release(); err != nil && e.logger != nil {
		e.logger.Warn("failed to release clip media", "clip_id", clipID, "error", err)
	}
	if e.logger != nil {
		e.logger.Info("clip removed", "clip_id", clipID)
	}
	e.notify(snap)
	return nil
}

// SeekGlobal moves the global scrub position. The percentage resolves to a
// clip and a local time; if that clip is not the active one the surface is
// swapped and the seek buffered. No-op on an empty or zero-duration
// timeline.
func (e *Engine) SeekGlobal(percent float64) {
	e.mu.Lock()
	clipID, local, ok := e.layout.ClipAt(percent)
	if !ok {
		e.mu.Unlock()
		return
	}
	e.percent = clampFloat(percent, 0, 100)
	if clip := e.registry.ByID(clipID); clip != nil {
		e.controller.Select(clip, local)
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// SelectClip makes a clip the playback target at its start, as a library
// or timeline-block click does. Unknown ids are ignored.
func (e *Engine) SelectClip(clipID string) {
	e.mu.Lock()
	clip := e.registry.ByID(clipID)
	if clip == nil {
		e.mu.Unlock()
		return
	}
	e.controller.Select(clip, 0)
	if p, ok := e.layout.StartPercent(clipID); ok {
		e.percent = p
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// Place applies a drag-and-drop move and recomputes the layout. Stale ids
// degrade per the placement rules; nothing fails.
func (e *Engine) Place(movingID string, track int, anchorID string, pos Position) {
	e.mu.Lock()
	e.registry.Replace(Place(e.registry.Clips(), movingID, track, anchorID, pos))
	e.layout = ComputeLayout(e.registry.Clips())
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// MetadataReady records the surface-reported duration, which is
// authoritative once a clip has actually loaded, then feeds the event
// through the controller and resynchronizes the global scrub position
// with wherever the surface ended up.
func (e *Engine) MetadataReady(clipID string, duration float64) {
	e.mu.Lock()
	if e.registry.SetDuration(clipID, duration) {
		e.layout = ComputeLayout(e.registry.Clips())
	}
	local, concernsActive := e.controller.MetadataReady(clipID, duration)
	if concernsActive {
		if p, ok := e.layout.PercentFor(clipID, local); ok {
			e.percent = p
		}
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// TimeUpdated maps the surface's local playback position back onto the
// global scrubber. Ignored outside the Active state.
func (e *Engine) TimeUpdated(localTime float64) {
	e.mu.Lock()
	if e.controller.State() != Active {
		e.mu.Unlock()
		return
	}
	active := e.controller.Active()
	if active == nil {
		e.mu.Unlock()
		return
	}
	if p, ok := e.layout.PercentFor(active.ID, localTime); ok {
		e.percent = p
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// Ended advances to the immediate successor in the global sequence,
// whatever its track. On the final clip the scrubber parks at 100 and the
// active clip stays put.
func (e *Engine) Ended() {
	e.mu.Lock()
	active := e.controller.Active()
	if active == nil || e.controller.State() != Active {
		e.mu.Unlock()
		return
	}

	clips := e.registry.Clips()
	idx := e.registry.IndexOf(active.ID)
	if idx >= 0 && idx+1 < len(clips) {
		next := clips[idx+1]
		e.controller.Select(next, 0)
		if p, ok := e.layout.StartPercent(next.ID); ok {
			e.percent = p
		}
	} else {
		e.percent = 100
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

// ClipMedia resolves a clip to its staged media path and mime type for the
// playback stream.
func (e *Engine) ClipMedia(clipID string) (path, mimeType string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	clip := e.registry.ByID(clipID)
	if clip == nil || clip.Resource == nil {
		return "", "", false
	}
	return clip.Resource.Path(), clip.MimeType, true
}

// Snapshot returns the current externally visible state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Close releases every remaining clip resource exactly once. Safe to call
// more than once; later calls find nothing to release.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	clips := e.registry.Clips()
	e.registry.Replace(nil)
	e.layout = Layout{}
	e.controller.Reset()
	e.percent = 0
	e.mu.Unlock()

	var firstErr error
	for _, c := range clips {
		if err := c.release(); err != nil && !errors.Is(err, media.ErrReleased) {
			if firstErr == nil {
				firstErr = err
			}
			if e.logger != nil {
				e.logger.Warn("failed to release clip media at teardown", "clip_id", c.ID, "error", err)
			}
		}
	}
	return firstErr
}

func (e *Engine) snapshotLocked() Snapshot {
	clips := e.registry.Clips()
	snap := Snapshot{
		Clips:       make([]ClipInfo, len(clips)),
		Entries:     make([]Entry, len(e.layout.Entries)),
		ActualTotal: e.layout.ActualTotal,
		Percent:     e.percent,
		State:       e.controller.State(),
	}
	for i, c := range clips {
		snap.Clips[i] = clipInfo(c)
	}
	copy(snap.Entries, e.layout.Entries)
	if active := e.controller.Active(); active != nil {
		snap.ActiveClipID = active.ID
	}
	return snap
}

func (e *Engine) notify(snap Snapshot) {
	if e.onChange != nil {
		e.onChange(snap)
	}
}

func clipInfo(c *Clip) ClipInfo {
	return ClipInfo{
		ID:        c.ID,
		Name:      c.Name,
		SizeLabel: c.SizeLabel,
		MimeType:  c.MimeType,
		Duration:  c.Duration,
		Track:     c.Track,
	}
}
