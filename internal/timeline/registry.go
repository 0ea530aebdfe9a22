package timeline

// Registry owns the single global ordering over all clips. Tracks partition
// visual placement only; playback continuity follows this order regardless
// of track. Registry is not safe for concurrent use; the Engine serializes
// access to it.
type Registry struct {
	clips []*Clip
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Len() int {
	return len(r.clips)
}

// Append adds a clip at the end of the global sequence.
func (r *Registry) Append(c *Clip) {
	r.clips = append(r.clips, c)
}

// Remove drops the clip with the given id from the sequence and returns it,
// or nil if the id is unknown.
func (r *Registry) Remove(id string) *Clip {
	for i, c := range r.clips {
		if c.ID == id {
			r.clips = append(r.clips[:i], r.clips[i+1:]...)
			return c
		}
	}
	return nil
}

// ByID returns the clip with the given id, or nil.
func (r *Registry) ByID(id string) *Clip {
	for _, c := range r.clips {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// IndexOf returns the clip's position in the global sequence, or -1.
func (r *Registry) IndexOf(id string) int {
	for i, c := range r.clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Clips returns a copy of the ordered sequence.
func (r *Registry) Clips() []*Clip {
	out := make([]*Clip, len(r.clips))
	copy(out, r.clips)
	return out
}

// Replace swaps in a new ordering atomically.
func (r *Registry) Replace(clips []*Clip) {
	r.clips = clips
}

// SetDuration records a probed duration. Returns false for unknown ids
// (the clip may have been removed before the probe resolved).
func (r *Registry) SetDuration(id string, seconds float64) bool {
	c := r.ByID(id)
	if c == nil {
		return false
	}
	if seconds < 0 {
		seconds = 0
	}
	c.Duration = seconds
	return true
}
