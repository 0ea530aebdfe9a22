package playback

import (
	"fmt"
	"log/slog"

	"github.com/cutroom/cutroom-agent/internal/timeline"
)

// Command is a playback instruction pushed to the media element host.
type Command struct {
	Op       string  `json:"op"` // "load" or "seek"
	ClipID   string  `json:"clip_id,omitempty"`
	URL      string  `json:"url,omitempty"`
	MimeType string  `json:"mime_type,omitempty"`
	Seconds  float64 `json:"seconds"`
}

// RemoteSurface implements timeline.Surface by pushing commands to the
// browser hosting the single media element. The browser answers with the
// metadata/timeupdate/ended events over the API, closing the loop.
type RemoteSurface struct {
	send   func(Command)
	logger *slog.Logger
}

func NewRemoteSurface(send func(Command), logger *slog.Logger) *RemoteSurface {
	return &RemoteSurface{send: send, logger: logger}
}

func (s *RemoteSurface) Load(clip *timeline.Clip) {
	if s.logger != nil {
		s.logger.Debug("surface load", "clip_id", clip.ID)
	}
	s.send(Command{
		Op:       "load",
		ClipID:   clip.ID,
		URL:      fmt.Sprintf("/playback/clip?clip_id=%s", clip.ID),
		MimeType: clip.MimeType,
	})
}

func (s *RemoteSurface) SeekTo(seconds float64) {
	if s.logger != nil {
		s.logger.Debug("surface seek", "seconds", seconds)
	}
	s.send(Command{Op: "seek", Seconds: seconds})
}
