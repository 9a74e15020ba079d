package clap

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	if err := Normalize(v); err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(v[0])-0.6) > 1e-5 || math.Abs(float64(v[1])-0.8) > 1e-5 {
		t.Errorf("normalized = %v, want [0.6 0.8]", v)
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("norm = %f, want 1", math.Sqrt(norm))
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	for _, v := range [][]float32{
		{0, 0, 0},
		{1e-9, 0, 0},
		{},
	} {
		if err := Normalize(v); !errors.Is(err, ErrDegenerateVector) {
			t.Errorf("Normalize(%v) = %v, want ErrDegenerateVector", v, err)
		}
	}
}

func TestScores(t *testing.T) {
	audio := []float32{1, 0}
	tagVecs := [][]float32{{1, 0}, {0, 1}, {-1, 0}}
	got, err := Scores(audio, tagVecs)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{1, 0, -1}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("score[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestScoresDimensionMismatch(t *testing.T) {
	if _, err := Scores([]float32{1, 0}, [][]float32{{1, 0, 0}}); err == nil {
		t.Error("expected error for mismatched dimensions")
	}
}

func TestTopK(t *testing.T) {
	vocab, err := NewVocabulary([]string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	scores := []float32{0.5, 0.9, 0.5}

	ranked := TopK(vocab, scores, 2)
	if len(ranked) != 2 {
		t.Fatalf("len = %d, want 2", len(ranked))
	}
	if ranked[0].Tag != "b" || ranked[1].Tag != "a" {
		t.Errorf("ranked = %v, want [b a]", ranked.Tags())
	}
}

func TestTopKTieBreaksByVocabularyOrder(t *testing.T) {
	vocab, _ := NewVocabulary([]string{"x", "y", "z"})
	scores := []float32{0.5, 0.5, 0.5}
	for i := 0; i < 10; i++ {
		ranked := TopK(vocab, scores, 3)
		tags := ranked.Tags()
		if tags[0] != "x" || tags[1] != "y" || tags[2] != "z" {
			t.Fatalf("run %d: ranked = %v, want vocabulary order", i, tags)
		}
	}
}

func TestTopKClampsToVocabulary(t *testing.T) {
	vocab := DefaultVocabulary()
	scores := make([]float32, vocab.Len())
	ranked := TopK(vocab, scores, 100)
	if len(ranked) != vocab.Len() {
		t.Errorf("len = %d, want %d", len(ranked), vocab.Len())
	}
	if got := TopK(vocab, scores, 0); len(got) != 0 {
		t.Errorf("k=0: len = %d, want 0", len(got))
	}
}

func TestTopKSelectsHighestScore(t *testing.T) {
	vocab := DefaultVocabulary()
	scores := make([]float32, vocab.Len())
	for i := range scores {
		scores[i] = 0.2
	}
	scores[3] = 0.8 // "music"

	ranked := TopK(vocab, scores, 1)
	if len(ranked) != 1 || ranked[0].Tag != "music" {
		t.Errorf("ranked = %v, want [music]", ranked.Tags())
	}
}
