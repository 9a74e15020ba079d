// Package pcm provides sample format conversion and channel mixdown for
// PCM (Pulse Code Modulation) audio.
//
// All functions operate on interleaved samples. Float samples are
// normalized to [-1, 1]; integer samples are signed little-endian
// conventions as decoded by the codec packages.
package pcm

// Int16ToFloat32 converts signed 16-bit samples to normalized float32.
func Int16ToFloat32(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// BytesLEToFloat32 converts little-endian 16-bit PCM bytes to normalized
// float32 samples. A trailing odd byte is ignored.
func BytesLEToFloat32(in []byte) []float32 {
	n := len(in) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(in[2*i]) | int16(in[2*i+1])<<8
		out[i] = float32(s) / 32768.0
	}
	return out
}

// IntToFloat32 converts integer samples of the given bit depth to
// normalized float32. Depths of 8 (unsigned), 16, 24 and 32 bits are
// supported; other depths scale by the nominal full-scale value.
func IntToFloat32(in []int, bitDepth int) []float32 {
	out := make([]float32, len(in))
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned.
		for i, s := range in {
			out[i] = float32(s)/127.5 - 1.0
		}
	default:
		scale := float32(int64(1) << (bitDepth - 1))
		for i, s := range in {
			out[i] = float32(s) / scale
		}
	}
	return out
}

// MixdownMono averages interleaved multi-channel samples into one
// channel. Mono input is returned as-is.
func MixdownMono(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var acc float32
		for c := 0; c < channels; c++ {
			acc += interleaved[f*channels+c]
		}
		out[f] = acc / float32(channels)
	}
	return out
}
