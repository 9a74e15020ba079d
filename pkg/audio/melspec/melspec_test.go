package melspec

import (
	"math"
	"testing"
)

func TestHannWindow(t *testing.T) {
	w := hannWindow(1024)
	if len(w) != 1024 {
		t.Fatalf("expected 1024, got %d", len(w))
	}
	if math.Abs(w[0]) > 1e-9 {
		t.Errorf("w[0] = %f, want 0", w[0])
	}
	if math.Abs(w[511]-1.0) > 0.01 {
		t.Errorf("w[511] = %f, want ~1.0", w[511])
	}
}

func TestMelConversion(t *testing.T) {
	// HTK mel scale: 2595 * log10(1 + f/700)
	mel := hzToMel(1000)
	if math.Abs(mel-1000.45) > 1.0 {
		t.Errorf("hzToMel(1000) = %f, want ~1000.45", mel)
	}
	hz := melToHz(mel)
	if math.Abs(hz-1000) > 0.1 {
		t.Errorf("melToHz(hzToMel(1000)) = %f, want 1000", hz)
	}
}

func TestMelFilterBank(t *testing.T) {
	bank := melFilterBank(64, 1024, 48000, 50, 14000)
	if len(bank) != 64 {
		t.Fatalf("expected 64 filters, got %d", len(bank))
	}
	halfFFT := 1024/2 + 1
	for i, f := range bank {
		if len(f) != halfFFT {
			t.Fatalf("filter %d: expected %d bins, got %d", i, halfFFT, len(f))
		}
		hasNonZero := false
		for _, v := range f {
			if v > 0 {
				hasNonZero = true
				break
			}
		}
		if !hasNonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}
}

func TestFFT(t *testing.T) {
	// DC + 1 Hz cosine over an 8-sample window.
	n := 8
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = 1.0 + math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	FFT(re, im)

	if math.Abs(re[0]-float64(n)) > 0.01 {
		t.Errorf("DC = %f, want %d", re[0], n)
	}
	if math.Abs(re[1]-float64(n)/2) > 0.01 {
		t.Errorf("H1 = %f, want %f", re[1], float64(n)/2)
	}
}

func TestExtractShape(t *testing.T) {
	cfg := DefaultConfig()
	ext := New(cfg)

	// One second of 440 Hz sine at 48 kHz.
	n := 48000
	pcm := make([]float32, n)
	for i := range pcm {
		pcm[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(n)))
	}

	feats := ext.Extract(pcm)
	wantFrames := (n-cfg.WindowSize)/cfg.HopSize + 1
	if len(feats) != wantFrames {
		t.Fatalf("frames = %d, want %d", len(feats), wantFrames)
	}
	if ext.NumFrames(n) != wantFrames {
		t.Errorf("NumFrames = %d, want %d", ext.NumFrames(n), wantFrames)
	}
	for i, f := range feats {
		if len(f) != cfg.NumMels {
			t.Fatalf("frame %d: %d mels, want %d", i, len(f), cfg.NumMels)
		}
		for _, v := range f {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("frame %d contains NaN/Inf", i)
			}
		}
	}
}

func TestExtractorConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumMels = 80
	if got := New(cfg).Config(); got != cfg {
		t.Errorf("Config() = %+v, want %+v", got, cfg)
	}
}

func TestExtractSilenceFloor(t *testing.T) {
	ext := New(DefaultConfig())
	feats := ext.Extract(make([]float32, 4800))
	if len(feats) == 0 {
		t.Fatal("expected at least one frame")
	}
	// log10 floor is -10 for pure silence.
	for _, v := range feats[0] {
		if v != -10 {
			t.Fatalf("silence mel = %v, want -10", v)
		}
	}
}

func TestExtractTooShort(t *testing.T) {
	ext := New(DefaultConfig())
	if feats := ext.Extract(make([]float32, 100)); feats != nil {
		t.Errorf("expected nil for input shorter than one window, got %d frames", len(feats))
	}
}
