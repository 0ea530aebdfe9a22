package timeline

// Surface is the single-stream playback collaborator. Loading a new clip
// is asynchronous on real surfaces: the clip's true duration is only known
// once the surface reports metadata back, so seeks issued during a swap
// are buffered in the controller until then.
type Surface interface {
	Load(clip *Clip)
	SeekTo(seconds float64)
}

// State is the continuity controller's mode.
type State int

const (
	// Idle means no clip is loaded.
	Idle State = iota
	// Active means a clip is the loaded target with no seek outstanding.
	Active
	// AwaitingLoad means a clip swap was requested and its metadata has
	// not arrived yet.
	AwaitingLoad
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case AwaitingLoad:
		return "awaiting_load"
	default:
		return "idle"
	}
}

// PendingSeek is the single-slot buffered seek target. A newer request
// simply overwrites it; there is no queue.
type PendingSeek struct {
	ClipID string
	Time   float64
}

// Controller keeps the playback surface in sync with the logical current
// clip. It is a plain event reducer: no goroutines, no locking; the Engine
// serializes calls into it.
type Controller struct {
	surface Surface
	state   State
	active  *Clip
	pending *PendingSeek
}

func NewController(surface Surface) *Controller {
	return &Controller{surface: surface}
}

func (c *Controller) State() State {
	return c.state
}

// Active returns the clip currently targeted by the surface, loaded or
// still loading.
func (c *Controller) Active() *Clip {
	return c.active
}

// Pending returns the buffered seek, if any.
func (c *Controller) Pending() *PendingSeek {
	return c.pending
}

// Select makes clip the playback target positioned at localTime. Selecting
// the already-active clip seeks immediately when the surface is ready, or
// overwrites the buffered target while a load is in flight. Selecting a
// different clip swaps the surface and buffers the seek.
func (c *Controller) Select(clip *Clip, localTime float64) {
	if clip == nil {
		c.Reset()
		return
	}
	if localTime < 0 {
		localTime = 0
	}

	if c.active != nil && c.active.ID == clip.ID {
		if c.state == AwaitingLoad {
			c.pending = &PendingSeek{ClipID: clip.ID, Time: localTime}
			return
		}
		c.surface.SeekTo(localTime)
		return
	}

	c.active = clip
	c.pending = &PendingSeek{ClipID: clip.ID, Time: localTime}
	c.state = AwaitingLoad
	c.surface.Load(clip)
}

// MetadataReady handles the surface's metadata event for clipID, whose
// reported duration is now known. A matching pending seek is applied,
// clamped to that duration; otherwise the surface simply becomes active at
// local time 0. Returns the local time the surface now sits at and whether
// the event concerned the active clip at all.
func (c *Controller) MetadataReady(clipID string, duration float64) (float64, bool) {
	if c.pending != nil && c.pending.ClipID == clipID {
		t := c.pending.Time
		if duration > 0 && t > duration {
			t = duration
		}
		c.pending = nil
		c.state = Active
		c.surface.SeekTo(t)
		return t, true
	}

	if c.active != nil && c.active.ID == clipID {
		c.state = Active
		return 0, true
	}

	// Stale metadata from a superseded load; ignore.
	return 0, false
}

// Reset drops the active target and any buffered seek.
func (c *Controller) Reset() {
	c.state = Idle
	c.active = nil
	c.pending = nil
}
