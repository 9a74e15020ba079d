package clap

import "context"

// Encoder converts audio waveforms and text strings into embedding
// vectors in a shared semantic space.
//
// Implementations must be safe for concurrent use; the engine shares one
// encoder across worker goroutines. An implementation whose backend is
// not reentrant must serialize calls internally.
type Encoder interface {
	// EmbedAudio computes the embedding of a mono float32 waveform
	// sampled at [TargetSampleRate]. The result has length Dimension().
	EmbedAudio(ctx context.Context, waveform []float32) ([]float32, error)

	// EmbedText computes one embedding per input string, order-aligned
	// with texts. Each result has length Dimension().
	EmbedText(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the embedding vectors.
	Dimension() int

	// ModelID returns the identifier the encoder was loaded from.
	ModelID() string

	// Close releases resources held by the encoder (e.g. ONNX sessions).
	Close() error
}
