package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/clapety/clapety/pkg/audio/pcm"
)

func readWAV(r io.Reader) (*Audio, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("decode: not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode: wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("decode: wav: missing format info")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth == 0 {
		bitDepth = 16
	}

	return &Audio{
		Samples:    pcm.IntToFloat32(buf.Data, bitDepth),
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}
