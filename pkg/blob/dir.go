package blob

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir implements Store on top of the local filesystem.
// All paths are resolved relative to the configured root directory.
type Dir struct {
	root string
}

// NewDir creates a Dir store rooted at dir.
// The directory is created (with parents) if it does not already exist.
func NewDir(dir string) (*Dir, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Dir{root: abs}, nil
}

// resolve turns a store path into an absolute filesystem path.
func (d *Dir) resolve(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

// Read opens the named artifact for reading.
func (d *Dir) Read(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(d.resolve(path))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Write opens the named artifact for writing, creating parent
// directories as needed. An existing file is truncated.
func (d *Dir) Write(_ context.Context, path string) (io.WriteCloser, error) {
	full := d.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes the named artifact. A missing file is not an error.
func (d *Dir) Delete(_ context.Context, path string) error {
	err := os.Remove(d.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Exists reports whether the named artifact exists.
func (d *Dir) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(d.resolve(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
