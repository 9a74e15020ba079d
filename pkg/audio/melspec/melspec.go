// Package melspec computes log-mel spectrograms from mono float32 audio.
//
// This is the front end the CLAP audio encoder expects: the waveform is
// windowed, transformed with an FFT, projected through a triangular mel
// filterbank and log-compressed. The output is a [T, NumMels] float32
// matrix suitable for direct tensor input.
//
// Default parameters match the CLAP feature extractor convention:
//
//	SampleRate: 48000
//	WindowSize: 1024
//	HopSize:    480 (10 ms)
//	FFTSize:    1024
//	NumMels:    64
//	LowFreq:    50
//	HighFreq:   14000
package melspec

import "math"

// Config controls log-mel extraction parameters.
type Config struct {
	SampleRate int     // audio sample rate in Hz
	WindowSize int     // analysis window length in samples
	HopSize    int     // hop length in samples
	FFTSize    int     // FFT size (power of two, >= WindowSize)
	NumMels    int     // number of mel bins
	LowFreq    float64 // lowest filterbank frequency in Hz
	HighFreq   float64 // highest filterbank frequency in Hz
}

// DefaultConfig returns the standard config for CLAP audio encoders.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		WindowSize: 1024,
		HopSize:    480,
		FFTSize:    1024,
		NumMels:    64,
		LowFreq:    50,
		HighFreq:   14000,
	}
}

// Extractor computes log-mel features from float32 samples.
type Extractor struct {
	cfg     Config
	window  []float64
	melBank [][]float64
}

// New creates an Extractor with the given config.
func New(cfg Config) *Extractor {
	return &Extractor{
		cfg:     cfg,
		window:  hannWindow(cfg.WindowSize),
		melBank: melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq),
	}
}

// Config returns the parameters the extractor was built with.
func (e *Extractor) Config() Config { return e.cfg }

// NumFrames returns the number of analysis frames produced for n input
// samples.
func (e *Extractor) NumFrames(n int) int {
	if n < e.cfg.WindowSize {
		return 0
	}
	return (n-e.cfg.WindowSize)/e.cfg.HopSize + 1
}

// Extract computes log10-mel features. Input samples are normalized
// float32 in [-1, 1]. Output is [T][NumMels] where T = NumFrames(len(pcm)).
func (e *Extractor) Extract(pcm []float32) [][]float32 {
	cfg := e.cfg
	numFrames := e.NumFrames(len(pcm))
	if numFrames == 0 {
		return nil
	}

	nfft := cfg.FFTSize
	halfFFT := nfft/2 + 1
	features := make([][]float32, numFrames)

	re := make([]float64, nfft)
	im := make([]float64, nfft)
	power := make([]float64, halfFFT)

	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopSize

		for i := 0; i < cfg.WindowSize; i++ {
			re[i] = float64(pcm[start+i]) * e.window[i]
		}
		for i := cfg.WindowSize; i < nfft; i++ {
			re[i] = 0
		}
		for i := range im {
			im[i] = 0
		}
		FFT(re, im)

		for i := 0; i < halfFFT; i++ {
			power[i] = re[i]*re[i] + im[i]*im[i]
		}

		mel := make([]float32, cfg.NumMels)
		for m := 0; m < cfg.NumMels; m++ {
			sum := 0.0
			for k, w := range e.melBank[m] {
				sum += w * power[k]
			}
			// Log floor avoids -inf on silence.
			if sum < 1e-10 {
				sum = 1e-10
			}
			mel[m] = float32(math.Log10(sum))
		}
		features[t] = mel
	}

	return features
}
