package resampler

import (
	"math"
	"testing"
)

func TestResamplePassthrough(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out, err := Resample(in, 48000, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
}

func TestResampleEmpty(t *testing.T) {
	out, err := Resample(nil, 16000, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("len = %d, want 0", len(out))
	}
}

func TestResampleInvalidRate(t *testing.T) {
	if _, err := Resample([]float32{0}, 0, 48000); err == nil {
		t.Error("expected error for zero source rate")
	}
	if _, err := Resample([]float32{0}, 16000, -1); err == nil {
		t.Error("expected error for negative target rate")
	}
}

func TestResampleUpsampleLength(t *testing.T) {
	// One second of a 440 Hz sine at 16 kHz, upsampled to 48 kHz.
	const srcRate, dstRate = 16000, 48000
	in := make([]float32, srcRate)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / srcRate))
	}
	out, err := Resample(in, srcRate, dstRate)
	if err != nil {
		t.Fatal(err)
	}
	want := len(in) * dstRate / srcRate
	// Polyphase filters trim edge samples; allow a small margin.
	if out == nil || len(out) < want*9/10 || len(out) > want*11/10 {
		t.Errorf("output length = %d, want about %d", len(out), want)
	}
}
