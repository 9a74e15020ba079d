// Package resampler converts mono float32 audio between sample rates.
//
// Conversion uses a pure Go polyphase resampler (no CGO/FFI
// dependencies), so binaries stay portable across platforms.
package resampler

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts a mono waveform from srcRate to dstRate. Equal rates
// or empty input return the input unchanged. The output length is
// approximately len(samples) * dstRate / srcRate.
func Resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resampler: invalid rates %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate || len(samples) == 0 {
		return samples, nil
	}

	config := &resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	rs, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}

	input := make([]float64, len(samples))
	for i, s := range samples {
		input[i] = float64(s)
	}
	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resampler: %w", err)
	}

	out := make([]float32, len(output))
	for i, s := range output {
		out[i] = float32(s)
	}
	return out, nil
}
