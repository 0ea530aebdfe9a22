package timeline

// Entry is the derived layout record for one clip. Start accumulates real
// durations; LayoutStart accumulates floor-adjusted ones, so unknown-length
// clips keep a visible slot without distorting actual timing.
type Entry struct {
	ClipID       string
	Track        int
	Start        float64
	LayoutStart  float64
	SafeDuration float64
	WidthPercent float64
}

// Layout is the full derivation for the current sequence. It is recomputed
// from scratch on every registry or duration change and never stored.
type Layout struct {
	Entries     []Entry
	ActualTotal float64
	LayoutTotal float64
}

// ComputeLayout folds the ordered sequence once, threading two cursors:
// the layout cursor advances by the floor-adjusted duration, the actual
// cursor by the raw duration (0 while unknown).
func ComputeLayout(clips []*Clip) Layout {
	l := Layout{Entries: make([]Entry, 0, len(clips))}

	var layoutCursor, actualCursor float64
	for _, c := range clips {
		safe := c.Duration
		if safe <= MinSlotDuration {
			safe = MinSlotDuration
		}
		l.Entries = append(l.Entries, Entry{
			ClipID:       c.ID,
			Track:        c.Track,
			Start:        actualCursor,
			LayoutStart:  layoutCursor,
			SafeDuration: safe,
		})
		layoutCursor += safe
		actualCursor += c.Duration
	}

	l.ActualTotal = actualCursor
	l.LayoutTotal = layoutCursor
	if l.LayoutTotal <= 0 {
		// Empty sequences short-circuit upstream; this only guards the
		// division below.
		l.LayoutTotal = MinSlotDuration
	}

	for i := range l.Entries {
		l.Entries[i].WidthPercent = l.Entries[i].SafeDuration / l.LayoutTotal * 100
	}
	return l
}

// Entry returns the layout entry for a clip id, or nil.
func (l Layout) Entry(clipID string) *Entry {
	for i := range l.Entries {
		if l.Entries[i].ClipID == clipID {
			return &l.Entries[i]
		}
	}
	return nil
}
