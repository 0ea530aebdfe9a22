package timeline

// Position says where a dragged clip lands relative to its anchor. The
// before/after decision for a live drag is made by the UI from pointer
// position over the anchor's midline and passed in here as-is.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionEnd    Position = "end"
)

// Place computes the sequence resulting from a drag-and-drop move: the
// moving clip changes track and position in one atomic replacement.
// If movingID is unknown the input is returned unchanged. A missing or
// stale anchor degrades to append-at-end.
func Place(clips []*Clip, movingID string, track int, anchorID string, pos Position) []*Clip {
	var moving *Clip
	reduced := make([]*Clip, 0, len(clips))
	for _, c := range clips {
		if c.ID == movingID {
			moving = c
			continue
		}
		reduced = append(reduced, c)
	}
	if moving == nil {
		return clips
	}

	if track < 0 {
		track = 0
	}
	moving.Track = track

	if anchorID == "" || pos == PositionEnd {
		return append(reduced, moving)
	}

	at := -1
	for i, c := range reduced {
		if c.ID == anchorID {
			at = i
			break
		}
	}
	if at == -1 {
		return append(reduced, moving)
	}
	if pos == PositionAfter {
		at++
	}

	out := make([]*Clip, 0, len(reduced)+1)
	out = append(out, reduced[:at]...)
	out = append(out, moving)
	out = append(out, reduced[at:]...)
	return out
}
