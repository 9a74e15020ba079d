package clap

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Engine ranks vocabulary tags against audio clips using one encoder.
//
// Tag embeddings depend only on the vocabulary, so the engine computes
// them on first use and reuses them for every subsequent clip. An Engine
// is safe for concurrent use.
type Engine struct {
	enc   Encoder
	vocab *Vocabulary

	mu      sync.Mutex
	tagVecs [][]float32
}

// NewEngine creates an engine over enc and vocab. A nil vocab selects
// [DefaultVocabulary]. The engine does not own the encoder; closing it
// is the caller's responsibility (typically via [Cache]).
func NewEngine(enc Encoder, vocab *Vocabulary) *Engine {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Engine{enc: enc, vocab: vocab}
}

// Vocabulary returns the engine's tag vocabulary.
func (e *Engine) Vocabulary() *Vocabulary { return e.vocab }

// ModelID returns the identifier of the underlying encoder's model.
func (e *Engine) ModelID() string { return e.enc.ModelID() }

// TagVectors returns the unit-normalized tag embeddings, computing them
// on first call. A failure here poisons nothing: the next call retries.
func (e *Engine) TagVectors(ctx context.Context) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tagVecs != nil {
		return e.tagVecs, nil
	}

	vecs, err := e.enc.EmbedText(ctx, e.vocab.Tags())
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if len(vecs) != e.vocab.Len() {
		return nil, &EmbeddingError{Err: fmt.Errorf("got %d text vectors for %d tags", len(vecs), e.vocab.Len())}
	}
	dim := e.enc.Dimension()
	for i, v := range vecs {
		if len(v) != dim {
			return nil, &EmbeddingError{Err: fmt.Errorf("tag %q: vector length %d, want %d", e.vocab.Tag(i), len(v), dim)}
		}
		if err := Normalize(v); err != nil {
			return nil, &EmbeddingError{Err: fmt.Errorf("tag %q: %w", e.vocab.Tag(i), err)}
		}
	}
	e.tagVecs = vecs
	return vecs, nil
}

// RankWaveform embeds a mono [TargetSampleRate] waveform and returns the
// top-k tags by cosine similarity. The name is used for error reporting
// only.
func (e *Engine) RankWaveform(ctx context.Context, name string, waveform []float32, k int) (RankedTags, error) {
	tagVecs, err := e.TagVectors(ctx)
	if err != nil {
		return nil, err
	}

	av, err := e.enc.EmbedAudio(ctx, waveform)
	if err != nil {
		return nil, &EmbeddingError{Path: name, Err: err}
	}
	if len(av) != e.enc.Dimension() {
		return nil, &EmbeddingError{Path: name, Err: fmt.Errorf("vector length %d, want %d", len(av), e.enc.Dimension())}
	}
	if err := Normalize(av); err != nil {
		return nil, &EmbeddingError{Path: name, Err: err}
	}

	scores, err := Scores(av, tagVecs)
	if err != nil {
		return nil, &EmbeddingError{Path: name, Err: err}
	}
	return TopK(e.vocab, scores, k), nil
}

// CaptionFile captions a single audio file.
func (e *Engine) CaptionFile(ctx context.Context, path string, k int) (*CaptionRecord, error) {
	wave, err := IngestFile(path)
	if err != nil {
		return nil, err
	}
	ranked, err := e.RankWaveform(ctx, path, wave, k)
	if err != nil {
		return nil, err
	}
	return e.record(path, ranked), nil
}

// CaptionReader captions audio read from r, decoded per ext. Used by the
// HTTP server for uploads that never touch disk.
func (e *Engine) CaptionReader(ctx context.Context, name, ext string, r io.Reader, k int) (*CaptionRecord, error) {
	wave, err := IngestReader(name, ext, r)
	if err != nil {
		return nil, err
	}
	ranked, err := e.RankWaveform(ctx, name, wave, k)
	if err != nil {
		return nil, err
	}
	return e.record(name, ranked), nil
}

func (e *Engine) record(name string, ranked RankedTags) *CaptionRecord {
	return &CaptionRecord{
		File:    name,
		Caption: Assemble(ranked),
		Tags:    ranked.Tags(),
		Model:   e.enc.ModelID(),
	}
}
