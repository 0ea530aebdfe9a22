// Package playback bridges the engine to its single-stream playback
// surface: a browser media element that fetches clip bytes over HTTP and
// receives load/seek commands pushed by the agent.
package playback

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Streamer serves staged clip media with byte-range support, which the
// media element needs for its own seeking.
type Streamer struct {
	logger *slog.Logger
}

func NewStreamer(logger *slog.Logger) *Streamer {
	return &Streamer{logger: logger}
}

// ServeClip streams the staged file at path. mimeType comes from the clip
// record; the file extension is the fallback.
func (s *Streamer) ServeClip(w http.ResponseWriter, r *http.Request, path, mimeType string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "media not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open media: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat media: %w", err)
	}
	size := stat.Size()

	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", mimeType)

	br, err := ParseRange(r.Header.Get("Range"), size)
	switch {
	case err == ErrUnsatisfiable:
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case err == ErrInvalidRange:
		// Malformed ranges fall back to the full body.
		br = nil
	case err != nil:
		return err
	}

	if br == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, f)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", br.Length()))
	w.Header().Set("Content-Range", br.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := f.Seek(br.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek media: %w", err)
	}
	io.CopyN(w, f, br.Length())
	return nil
}
