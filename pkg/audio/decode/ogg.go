package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

func readOgg(r io.Reader) (*Audio, error) {
	or, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decode: ogg: %w", err)
	}

	var samples []float32
	buf := make([]float32, 4096)
	for {
		n, err := or.Read(buf)
		samples = append(samples, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode: ogg: %w", err)
		}
	}

	return &Audio{
		Samples:    samples,
		SampleRate: or.SampleRate(),
		Channels:   or.Channels(),
	}, nil
}
