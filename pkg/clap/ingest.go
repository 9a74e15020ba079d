package clap

import (
	"fmt"
	"io"

	"github.com/clapety/clapety/pkg/audio/decode"
	"github.com/clapety/clapety/pkg/audio/pcm"
	"github.com/clapety/clapety/pkg/audio/resampler"
)

// IngestFile decodes the audio file at path into a mono float32 waveform
// at [TargetSampleRate]. Decode and resample failures are wrapped in a
// [DecodeError] carrying the path.
func IngestFile(path string) ([]float32, error) {
	a, err := decode.File(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	wave, err := conform(a)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return wave, nil
}

// IngestReader decodes audio from r using the decoder for ext. The name
// is used for error reporting only.
func IngestReader(name, ext string, r io.Reader) ([]float32, error) {
	a, err := decode.Reader(ext, r)
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	wave, err := conform(a)
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	return wave, nil
}

// conform mixes a decoded clip down to mono and resamples it to
// [TargetSampleRate].
func conform(a *decode.Audio) ([]float32, error) {
	if len(a.Samples) == 0 {
		return nil, fmt.Errorf("empty audio stream")
	}
	mono := pcm.MixdownMono(a.Samples, a.Channels)
	return resampler.Resample(mono, a.SampleRate, TargetSampleRate)
}
