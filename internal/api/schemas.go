package api

import (
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
	Clips   int    `json:"clips"`
}

type ClipResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	SizeLabel string  `json:"size_label"`
	MimeType  string  `json:"mime_type"`
	DurationS float64 `json:"duration_s"`
	Track     int     `json:"track"`
}

type EntryResponse struct {
	ClipID        string  `json:"clip_id"`
	Track         int     `json:"track"`
	StartS        float64 `json:"start_s"`
	LayoutStartS  float64 `json:"layout_start_s"`
	SafeDurationS float64 `json:"safe_duration_s"`
	WidthPercent  float64 `json:"width_percent"`
}

// TimelineResponse is the engine snapshot handed to the UI: clip records
// in global order, derived layout entries, and the playback position.
type TimelineResponse struct {
	Clips        []ClipResponse  `json:"clips"`
	Entries      []EntryResponse `json:"entries"`
	ActualTotalS float64         `json:"actual_total_s"`
	Percent      float64         `json:"percent"`
	ActiveClipID string          `json:"active_clip_id,omitempty"`
	State        string          `json:"state"`
}

type ImportResponse struct {
	ClipID string `json:"clip_id"`
}

type SeekRequest struct {
	Percent float64 `json:"percent"`
}

type PlaceRequest struct {
	ClipID   string `json:"clip_id"`
	Track    int    `json:"track"`
	AnchorID string `json:"anchor_id,omitempty"`
	Position string `json:"position"`
}

type MetadataEventRequest struct {
	ClipID    string  `json:"clip_id"`
	DurationS float64 `json:"duration_s"`
}

type TimeUpdateEventRequest struct {
	Seconds float64 `json:"seconds"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SnapshotToResponse(s timeline.Snapshot) TimelineResponse {
	resp := TimelineResponse{
		Clips:        make([]ClipResponse, len(s.Clips)),
		Entries:      make([]EntryResponse, len(s.Entries)),
		ActualTotalS: s.ActualTotal,
		Percent:      s.Percent,
		ActiveClipID: s.ActiveClipID,
		State:        s.State.String(),
	}
	for i, c := range s.Clips {
		resp.Clips[i] = ClipResponse{
			ID:        c.ID,
			Name:      c.Name,
			SizeLabel: c.SizeLabel,
			MimeType:  c.MimeType,
			DurationS: c.Duration,
			Track:     c.Track,
		}
	}
	for i, e := range s.Entries {
		resp.Entries[i] = EntryResponse{
			ClipID:        e.ClipID,
			Track:         e.Track,
			StartS:        e.Start,
			LayoutStartS:  e.LayoutStart,
			SafeDurationS: e.SafeDuration,
			WidthPercent:  e.WidthPercent,
		}
	}
	return resp
}
