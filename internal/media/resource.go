// Package media owns the staged on-disk copies of imported clips.
// Each imported clip holds exactly one Resource; the file it points at
// lives until the resource is released.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ErrReleased is returned when a resource is released more than once.
var ErrReleased = errors.New("media resource already released")

// Resource is an exclusively owned handle to a staged media file.
// Release must be called exactly once, either when the owning clip is
// removed or at agent teardown.
type Resource struct {
	path string

	mu       sync.Mutex
	released bool
}

// NewResource wraps an existing staged file path.
func NewResource(path string) *Resource {
	return &Resource{path: path}
}

// Path returns the staged file path.
func (r *Resource) Path() string {
	return r.path
}

// Release deletes the staged file. The second and any later call returns
// ErrReleased without touching the filesystem.
func (r *Resource) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	r.released = true

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staged media: %w", err)
	}
	return nil
}

// Stage copies an uploaded payload into dir under a fresh name that keeps
// the original extension, and returns the owning resource plus the number
// of bytes written.
func Stage(dir, filename string, src io.Reader) (*Resource, int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, 0, fmt.Errorf("failed to create media dir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(filename)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create staged file: %w", err)
	}

	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, 0, fmt.Errorf("failed to write staged file: %w", err)
	}

	return NewResource(path), n, nil
}
