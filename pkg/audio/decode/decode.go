// Package decode turns audio files into interleaved float32 PCM.
//
// Supported codecs: WAV (go-audio), MP3 (minimp3-style pure Go decoder),
// FLAC and Ogg Vorbis. The .m4a and .webm extensions are recognized by
// file discovery but have no pure Go decoder wired in; decoding them
// returns [ErrUnsupportedCodec] so batch callers can record the failure
// against the file and continue.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedCodec is returned when a file's extension is recognized
// but no decoder is available for its codec.
var ErrUnsupportedCodec = errors.New("decode: codec not supported")

// Audio is a decoded clip: interleaved samples in [-1, 1] with the
// source sample rate and channel count.
type Audio struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (a *Audio) Frames() int {
	if a.Channels == 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

// File decodes the audio file at path, choosing the decoder from the
// file extension.
func File(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Reader(filepath.Ext(path), f)
}

// Reader decodes audio from r using the decoder for ext (with or
// without the leading dot, case-insensitive).
func Reader(ext string, r io.Reader) (*Audio, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "wav":
		return readWAV(r)
	case "mp3":
		return readMP3(r)
	case "flac":
		return readFLAC(r)
	case "ogg":
		return readOgg(r)
	case "m4a", "webm":
		return nil, fmt.Errorf("decode: %s: %w", ext, ErrUnsupportedCodec)
	default:
		return nil, fmt.Errorf("decode: unknown extension %q", ext)
	}
}

// asReadSeeker returns r as an io.ReadSeeker, buffering into memory if
// needed (the WAV decoder requires seeking).
func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
