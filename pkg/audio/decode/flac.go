package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

func readFLAC(r io.Reader) (*Audio, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("decode: flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	if channels <= 0 {
		return nil, fmt.Errorf("decode: flac: invalid channel count %d", channels)
	}
	scale := float32(int64(1) << (info.BitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode: flac: %w", err)
		}
		if len(frame.Subframes) != channels {
			return nil, fmt.Errorf("decode: flac: frame has %d subframes, want %d", len(frame.Subframes), channels)
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for c := 0; c < channels; c++ {
				samples = append(samples, float32(frame.Subframes[c].Samples[i])/scale)
			}
		}
	}

	return &Audio{
		Samples:    samples,
		SampleRate: int(info.SampleRate),
		Channels:   channels,
	}, nil
}
