package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStage_WritesFile(t *testing.T) {
	dir := t.TempDir()

	res, n, err := Stage(dir, "holiday.mp4", strings.NewReader("fake video bytes"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if n != int64(len("fake video bytes")) {
		t.Errorf("Stage() wrote %d bytes, want %d", n, len("fake video bytes"))
	}
	if filepath.Ext(res.Path()) != ".mp4" {
		t.Errorf("staged path %q lost original extension", res.Path())
	}

	data, err := os.ReadFile(res.Path())
	if err != nil {
		t.Fatalf("staged file unreadable: %v", err)
	}
	if string(data) != "fake video bytes" {
		t.Errorf("staged content = %q", data)
	}
}

func TestStage_UniqueNames(t *testing.T) {
	dir := t.TempDir()

	a, _, err := Stage(dir, "clip.mov", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	b, _, err := Stage(dir, "clip.mov", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if a.Path() == b.Path() {
		t.Errorf("two staged copies share path %q", a.Path())
	}
}

func TestRelease_RemovesFile(t *testing.T) {
	dir := t.TempDir()

	res, _, err := Stage(dir, "clip.mp4", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if err := res.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(res.Path()); !os.IsNotExist(err) {
		t.Errorf("staged file still present after release")
	}
}

func TestRelease_ExactlyOnce(t *testing.T) {
	dir := t.TempDir()

	res, _, err := Stage(dir, "clip.mp4", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if err := res.Release(); err != nil {
		t.Fatalf("first Release() error = %v", err)
	}
	if err := res.Release(); err != ErrReleased {
		t.Errorf("second Release() error = %v, want ErrReleased", err)
	}
}

func TestRelease_ToleratesMissingFile(t *testing.T) {
	res := NewResource(filepath.Join(t.TempDir(), "never-created.mp4"))

	if err := res.Release(); err != nil {
		t.Errorf("Release() on missing file error = %v, want nil", err)
	}
}
