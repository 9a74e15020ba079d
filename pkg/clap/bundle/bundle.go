// Package bundle exports loaded encoder artifacts as a portable
// directory consumed by downstream runtimes.
//
// Bundle layout:
//
//	<dir>/
//	  audio_encoder.onnx
//	  text_encoder.onnx
//	  tokenizer/
//	    tokenizer.json
//	    ...
//	  embedding_dim.txt
//
// Export stages into a temporary sibling directory and renames it into
// place, so a failed export never leaves a partial bundle behind.
package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clapety/clapety/pkg/blob"
	"github.com/clapety/clapety/pkg/clap"
)

// Bundle file names.
const (
	AudioGraphName  = "audio_encoder.onnx"
	TextGraphName   = "text_encoder.onnx"
	TokenizerDir    = "tokenizer"
	EmbeddingDimTxt = "embedding_dim.txt"
)

// Artifacts names the local files of a loaded encoder.
type Artifacts struct {
	AudioGraph     string
	TextGraph      string
	TokenizerFiles []string
}

// Source is an encoder that can expose its artifacts for export.
// *clapenc.Encoder satisfies it.
type Source interface {
	ModelID() string
	Dimension() int
	Artifacts() Artifacts
}

// Export writes the bundle for src into dir. dir must not already
// exist. Any failure is reported as [clap.ExportError] and leaves no
// partial output.
func Export(ctx context.Context, src Source, dir string) error {
	if err := export(ctx, src, dir); err != nil {
		return &clap.ExportError{Err: err}
	}
	return nil
}

func export(ctx context.Context, src Source, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("destination %s already exists", dir)
	}

	art := src.Artifacts()
	if art.AudioGraph == "" || art.TextGraph == "" {
		return fmt.Errorf("encoder exposes no graph artifacts")
	}
	if len(art.TokenizerFiles) == 0 {
		return fmt.Errorf("encoder exposes no tokenizer files")
	}

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	staging, err := os.MkdirTemp(parent, filepath.Base(dir)+".tmp-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := copyFile(filepath.Join(staging, AudioGraphName), art.AudioGraph); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := copyFile(filepath.Join(staging, TextGraphName), art.TextGraph); err != nil {
		return err
	}

	tokDir := filepath.Join(staging, TokenizerDir)
	if err := os.MkdirAll(tokDir, 0o755); err != nil {
		return err
	}
	for _, p := range art.TokenizerFiles {
		if err := copyFile(filepath.Join(tokDir, filepath.Base(p)), p); err != nil {
			return err
		}
	}

	dim := src.Dimension()
	if dim <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", dim)
	}
	dimPath := filepath.Join(staging, EmbeddingDimTxt)
	if err := os.WriteFile(dimPath, []byte(strconv.Itoa(dim)+"\n"), 0o644); err != nil {
		return err
	}

	// Re-verify the staged bundle before it becomes visible.
	if got, err := Verify(staging); err != nil {
		return err
	} else if got != dim {
		return fmt.Errorf("staged dimension %d does not match encoder %d", got, dim)
	}

	return os.Rename(staging, dir)
}

// Verify checks that dir holds a complete bundle and returns its
// embedding dimension.
func Verify(dir string) (int, error) {
	for _, name := range []string{AudioGraphName, TextGraphName} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return 0, fmt.Errorf("bundle: missing %s: %w", name, err)
		}
		if info.Size() == 0 {
			return 0, fmt.Errorf("bundle: %s is empty", name)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, TokenizerDir))
	if err != nil {
		return 0, fmt.Errorf("bundle: tokenizer dir: %w", err)
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("bundle: tokenizer dir is empty")
	}

	data, err := os.ReadFile(filepath.Join(dir, EmbeddingDimTxt))
	if err != nil {
		return 0, fmt.Errorf("bundle: %s: %w", EmbeddingDimTxt, err)
	}
	dim, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || dim <= 0 {
		return 0, fmt.Errorf("bundle: invalid %s content %q", EmbeddingDimTxt, strings.TrimSpace(string(data)))
	}
	return dim, nil
}

// Publish uploads an exported bundle directory to a blob store under
// prefix, preserving relative paths.
func Publish(ctx context.Context, store blob.Store, prefix, dir string) error {
	if _, err := Verify(dir); err != nil {
		return &clap.ExportError{Err: err}
	}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" {
			key = prefix + "/" + key
		}
		return blob.Upload(ctx, store, key, path)
	})
	if err != nil {
		return &clap.ExportError{Err: err}
	}
	return nil
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
