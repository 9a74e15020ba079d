// Package blob defines the Store interface for reading and writing
// binary artifacts. It abstracts the storage backend so bundle
// publishing can target local disk or an S3-compatible object store
// without changing application code.
//
// The primary use case is publishing exported encoder bundles (ONNX
// graphs, tokenizer files) to a shared location that downstream
// runtimes pull from.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Store is a minimal interface for artifact storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type Store interface {
	// Read opens the named artifact for reading.
	// The caller must close the returned ReadCloser when done.
	// If the artifact does not exist, an error wrapping os.ErrNotExist
	// is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named artifact for writing.
	// If it already exists it is replaced.
	// Parent directories are created automatically.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named artifact.
	// If it does not exist, Delete returns nil (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named artifact exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// Upload copies the local file at src into the store under path.
func Upload(ctx context.Context, store Store, path, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("blob: open %s: %w", src, err)
	}
	defer f.Close()

	w, err := store.Write(ctx, path)
	if err != nil {
		return fmt.Errorf("blob: write %s: %w", path, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("blob: upload %s: %w", path, err)
	}
	return w.Close()
}
