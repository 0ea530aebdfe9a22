// Package probe resolves media durations with ffprobe. Probing is best
// effort: a clip whose duration cannot be read simply stays at 0 and the
// timeline keeps it selectable through the layout floor.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobe shells out to the ffprobe binary for exact durations.
type FFprobe struct {
	bin    string
	logger *slog.Logger
}

func NewFFprobe(bin string, logger *slog.Logger) *FFprobe {
	if bin == "" {
		bin = "ffprobe"
	}
	return &FFprobe{bin: bin, logger: logger}
}

// Available reports whether the configured binary can be found.
func (p *FFprobe) Available() bool {
	_, err := exec.LookPath(p.bin)
	return err == nil
}

func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseDuration(out)
}

func parseDuration(out []byte) (float64, error) {
	s := strings.TrimSpace(string(out))
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable ffprobe duration %q: %w", s, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative ffprobe duration %q", s)
	}
	return seconds, nil
}

// Stub always reports an unknown duration. Used when ffprobe is not
// installed so imports still work end to end.
type Stub struct {
	logger *slog.Logger
}

func NewStub(logger *slog.Logger) *Stub {
	return &Stub{logger: logger}
}

func (s *Stub) Duration(ctx context.Context, path string) (float64, error) {
	if s.logger != nil {
		s.logger.Info("probe stub: duration requested (ffprobe unavailable)", "path", path)
	}
	return 0, nil
}
