package timeline

import (
	"github.com/google/uuid"

	"github.com/cutroom/cutroom-agent/internal/media"
)

// MinSlotDuration is the floor substituted for unknown or zero durations so
// a clip still occupies a nonzero, selectable slot in the layout.
const MinSlotDuration = 0.01

// Clip is one imported media unit. Name, resource, size label, mime type
// and duration are fixed after import (duration arrives once, from the
// probe); only Track changes afterwards, via placement.
type Clip struct {
	ID        string
	Name      string
	Resource  *media.Resource
	SizeLabel string
	MimeType  string
	Duration  float64 // seconds; 0 until probed, or if probing failed
	Track     int     // visual lane only, never an ordering key
}

// NewID returns a fresh opaque clip identifier.
func NewID() string {
	return uuid.NewString()
}

// release frees the clip's media resource, tolerating clips created
// without one.
func (c *Clip) release() error {
	if c.Resource == nil {
		return nil
	}
	return c.Resource.Release()
}
