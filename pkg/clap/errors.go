package clap

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNoInput is returned when discovery yields no supported audio
	// files. Batch commands must surface it before any model work.
	ErrNoInput = errors.New("clap: no supported audio files in input")

	// ErrDegenerateVector indicates an embedding with near-zero Euclidean
	// norm. It denotes encoder malfunction, never a user input problem.
	ErrDegenerateVector = errors.New("clap: embedding vector has near-zero norm")
)

// ModelLoadError reports that an encoder could not be obtained for a
// model identifier. It is fatal to the whole invocation: there is no
// fallback encoder and no pseudo-tags are produced without a model.
type ModelLoadError struct {
	Model string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("clap: load model %q: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// DecodeError reports that a specific file could not be decoded or
// resampled. It is isolated to that file; a batch continues with the
// remaining files.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("clap: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EmbeddingError reports an invalid vector produced by the encoder.
// Like DecodeError it is isolated per file, but it is flagged distinctly
// because it indicates encoder misbehavior rather than bad input.
// Path is empty when the failure concerns the shared text embeddings.
type EmbeddingError struct {
	Path string
	Err  error
}

func (e *EmbeddingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("clap: text embedding: %v", e.Err)
	}
	return fmt.Sprintf("clap: embed %s: %v", e.Path, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// ExportError reports a failure while producing a portable artifact
// bundle. It is fatal to the export; no partial bundle is left behind.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("clap: export: %v", e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
