// Package clapenc runs CLAP audio and text encoders with ONNX Runtime.
//
// A model identifier names a Hugging Face style repository containing two
// exported ONNX graphs plus tokenizer files. Artifacts are downloaded
// through the hub cache on first load and reused afterwards.
//
// The audio graph consumes a log-mel spectrogram of a fixed-length clip;
// the text graph consumes tokenizer ids with an attention mask. Both
// produce vectors in the shared embedding space consumed by pkg/clap.
package clapenc

import (
	"context"
	"fmt"
	"os"

	"github.com/gomlx/go-huggingface/hub"
	"github.com/gomlx/go-huggingface/tokenizers"

	"github.com/clapety/clapety/pkg/audio/melspec"
	"github.com/clapety/clapety/pkg/clap"
	"github.com/clapety/clapety/pkg/clap/bundle"
	"github.com/clapety/clapety/pkg/onnx"
)

// Repository artifact names.
const (
	AudioGraphFile = "audio_encoder.onnx"
	TextGraphFile  = "text_encoder.onnx"
)

// tokenizerFiles are downloaded alongside the graphs. Only
// tokenizer.json is mandatory; the rest are carried when present.
var tokenizerFiles = []string{
	"tokenizer.json",
	"tokenizer_config.json",
	"special_tokens_map.json",
}

// Graph tensor names, fixed by the export convention.
const (
	audioInputName  = "input_features"
	audioOutputName = "audio_embedding"
	textIDsName     = "input_ids"
	textMaskName    = "attention_mask"
	textOutputName  = "text_embedding"
)

// DefaultModelID is the repository used when no model is configured.
const DefaultModelID = "laion/clap-htsat-fused"

const (
	// ClipSeconds is the fixed clip length the audio graph expects.
	// Shorter clips are zero padded, longer clips truncated.
	ClipSeconds = 10

	// DefaultMaxTokens bounds tokenized text length.
	DefaultMaxTokens = 77

	// DefaultDimension is the embedding width of standard CLAP exports.
	DefaultDimension = 512
)

// Config controls encoder loading.
type Config struct {
	// ModelID is the repository identifier, e.g. "laion/clap-htsat-fused".
	ModelID string

	// Device selects the execution provider. Only "cpu" is supported;
	// empty means cpu. Anything else fails the load, there is no silent
	// fallback to a different device.
	Device string

	// CacheDir overrides the hub download cache location.
	CacheDir string

	// MaxTokens bounds tokenized text length. Zero means
	// [DefaultMaxTokens].
	MaxTokens int

	// Dimension is the embedding width. Zero means [DefaultDimension].
	Dimension int
}

// Encoder implements [clap.Encoder] over two ONNX sessions.
type Encoder struct {
	cfg       Config
	env       *onnx.Env
	audio     *onnx.Session
	text      *onnx.Session
	tok       tokenizers.Tokenizer
	mel       *melspec.Extractor
	artifacts bundle.Artifacts
}

// Load downloads model artifacts if needed and creates the encoder
// sessions. ctx is consulted between download steps, so a deadline or
// cancellation stops the load. Wrap with [clap.NewCache] to memoize
// loads per model.
func Load(ctx context.Context, cfg Config) (*Encoder, error) {
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("clapenc: empty model id")
	}
	switch cfg.Device {
	case "", "cpu":
	default:
		return nil, fmt.Errorf("clapenc: unsupported device %q, only cpu is available", cfg.Device)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}

	repo := hub.New(cfg.ModelID)
	if cfg.CacheDir != "" {
		repo = repo.WithCacheDir(cfg.CacheDir)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	audioPath, err := repo.DownloadFile(AudioGraphFile)
	if err != nil {
		return nil, fmt.Errorf("clapenc: download %s: %w", AudioGraphFile, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	textPath, err := repo.DownloadFile(TextGraphFile)
	if err != nil {
		return nil, fmt.Errorf("clapenc: download %s: %w", TextGraphFile, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tokPaths []string
	for i, name := range tokenizerFiles {
		p, err := repo.DownloadFile(name)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("clapenc: download %s: %w", name, err)
			}
			continue
		}
		tokPaths = append(tokPaths, p)
	}

	tok, err := tokenizers.New(repo)
	if err != nil {
		return nil, fmt.Errorf("clapenc: tokenizer: %w", err)
	}

	env, err := onnx.NewEnv("clapenc")
	if err != nil {
		return nil, err
	}

	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("clapenc: read audio graph: %w", err)
	}
	audioSess, err := env.NewSession(audioData)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("clapenc: audio graph: %w", err)
	}

	textData, err := os.ReadFile(textPath)
	if err != nil {
		audioSess.Close()
		env.Close()
		return nil, fmt.Errorf("clapenc: read text graph: %w", err)
	}
	textSess, err := env.NewSession(textData)
	if err != nil {
		audioSess.Close()
		env.Close()
		return nil, fmt.Errorf("clapenc: text graph: %w", err)
	}

	return &Encoder{
		cfg:   cfg,
		env:   env,
		audio: audioSess,
		text:  textSess,
		tok:   tok,
		mel:   melspec.New(melspec.DefaultConfig()),
		artifacts: bundle.Artifacts{
			AudioGraph:     audioPath,
			TextGraph:      textPath,
			TokenizerFiles: tokPaths,
		},
	}, nil
}

// Loader adapts Load to [clap.LoadFunc], filling the model id per call.
func Loader(cfg Config) clap.LoadFunc {
	return func(ctx context.Context, modelID string) (clap.Encoder, error) {
		c := cfg
		c.ModelID = modelID
		return Load(ctx, c)
	}
}

// EmbedAudio computes the audio embedding of a mono 48 kHz waveform.
func (e *Encoder) EmbedAudio(ctx context.Context, waveform []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clip := make([]float32, ClipSeconds*clap.TargetSampleRate)
	copy(clip, waveform)

	frames := e.mel.Extract(clip)
	cfg := e.mel.Config()
	flat := make([]float32, 0, len(frames)*cfg.NumMels)
	for _, f := range frames {
		flat = append(flat, f...)
	}

	input, err := onnx.NewTensor([]int64{1, 1, int64(len(frames)), int64(cfg.NumMels)}, flat)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	outputs, err := e.audio.Run([]string{audioInputName}, []*onnx.Tensor{input}, []string{audioOutputName})
	if err != nil {
		return nil, fmt.Errorf("clapenc: audio inference: %w", err)
	}
	defer outputs[0].Close()

	vec, err := outputs[0].FloatData()
	if err != nil {
		return nil, err
	}
	if len(vec) != e.cfg.Dimension {
		return nil, fmt.Errorf("clapenc: audio embedding has %d values, want %d", len(vec), e.cfg.Dimension)
	}
	return vec, nil
}

// EmbedText computes one embedding per input string in a single batch
// run. Sequences are truncated to MaxTokens and right padded to the
// longest sequence in the batch.
func (e *Encoder) EmbedText(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	batch := len(texts)
	tokens := make([][]int, batch)
	maxLen := 1
	for i, text := range texts {
		ids := e.tok.Encode(text)
		if len(ids) > e.cfg.MaxTokens {
			ids = ids[:e.cfg.MaxTokens]
		}
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
		tokens[i] = ids
	}

	ids := make([]int64, batch*maxLen)
	mask := make([]int64, batch*maxLen)
	for i, seq := range tokens {
		for j, id := range seq {
			ids[i*maxLen+j] = int64(id)
			mask[i*maxLen+j] = 1
		}
	}

	shape := []int64{int64(batch), int64(maxLen)}
	idTensor, err := onnx.NewInt64Tensor(shape, ids)
	if err != nil {
		return nil, err
	}
	defer idTensor.Close()
	maskTensor, err := onnx.NewInt64Tensor(shape, mask)
	if err != nil {
		return nil, err
	}
	defer maskTensor.Close()

	outputs, err := e.text.Run(
		[]string{textIDsName, textMaskName},
		[]*onnx.Tensor{idTensor, maskTensor},
		[]string{textOutputName},
	)
	if err != nil {
		return nil, fmt.Errorf("clapenc: text inference: %w", err)
	}
	defer outputs[0].Close()

	flat, err := outputs[0].FloatData()
	if err != nil {
		return nil, err
	}
	dim := e.cfg.Dimension
	if len(flat) != batch*dim {
		return nil, fmt.Errorf("clapenc: text embeddings have %d values, want %d", len(flat), batch*dim)
	}

	out := make([][]float32, batch)
	for i := range out {
		out[i] = flat[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return out, nil
}

// Dimension returns the embedding width.
func (e *Encoder) Dimension() int { return e.cfg.Dimension }

// ModelID returns the repository identifier the encoder was loaded from.
func (e *Encoder) ModelID() string { return e.cfg.ModelID }

// Artifacts returns the local paths of the loaded model files, for
// bundle export.
func (e *Encoder) Artifacts() bundle.Artifacts { return e.artifacts }

// Close releases both ONNX sessions and the environment.
func (e *Encoder) Close() error {
	if e.audio != nil {
		e.audio.Close()
	}
	if e.text != nil {
		e.text.Close()
	}
	if e.env != nil {
		e.env.Close()
	}
	return nil
}
