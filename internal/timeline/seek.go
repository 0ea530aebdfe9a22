package timeline

import "math"

// ClipAt maps a global scrub percentage onto the clip under it and the
// local playback time inside that clip. Returns ok=false when the layout
// is empty or carries no actual duration, in which case seeking is a no-op.
func (l Layout) ClipAt(percent float64) (clipID string, localTime float64, ok bool) {
	if len(l.Entries) == 0 || l.ActualTotal <= 0 {
		return "", 0, false
	}

	target := clampFloat(percent, 0, 100) / 100 * l.ActualTotal

	for _, e := range l.Entries {
		if e.Start+e.SafeDuration >= target {
			return e.ClipID, clampFloat(target-e.Start, 0, e.SafeDuration), true
		}
	}

	// Rounding at the very end of the sequence: fall back to the last entry.
	last := l.Entries[len(l.Entries)-1]
	return last.ClipID, clampFloat(target-last.Start, 0, last.SafeDuration), true
}

// PercentFor is the inverse mapping, used on every surface time update to
// keep the global scrubber in sync while a clip plays.
func (l Layout) PercentFor(clipID string, localTime float64) (float64, bool) {
	e := l.Entry(clipID)
	if e == nil || l.ActualTotal <= 0 {
		return 0, false
	}
	global := e.Start + math.Min(math.Max(localTime, 0), e.SafeDuration)
	return global / l.ActualTotal * 100, true
}

// StartPercent returns the global percentage at which a clip begins.
func (l Layout) StartPercent(clipID string) (float64, bool) {
	e := l.Entry(clipID)
	if e == nil || l.ActualTotal <= 0 {
		return 0, false
	}
	return e.Start / l.ActualTotal * 100, true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
