package decode

import (
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/clapety/clapety/pkg/audio/pcm"
)

func readMP3(r io.Reader) (*Audio, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decode: mp3: %w", err)
	}

	// The decoder always emits 16-bit little-endian stereo at the
	// source sample rate.
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode: mp3: %w", err)
	}

	return &Audio{
		Samples:    pcm.BytesLEToFloat32(data),
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}
