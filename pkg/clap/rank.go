package clap

import (
	"fmt"
	"math"
	"sort"
)

// NormEpsilon is the Euclidean-norm threshold below which an embedding
// is considered degenerate. Dividing by such a norm would silently
// produce NaN/Inf scores, so normalization fails instead.
const NormEpsilon = 1e-8

// Normalize scales v to unit Euclidean norm in place. It returns
// [ErrDegenerateVector] if the norm is below [NormEpsilon].
func Normalize(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm < NormEpsilon {
		return ErrDegenerateVector
	}
	inv := 1 / norm
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return nil
}

// Scores computes the dot product of one normalized audio vector against
// each normalized tag vector. With unit-length inputs this equals cosine
// similarity, range [-1, 1].
func Scores(audio []float32, tagVecs [][]float32) ([]float32, error) {
	out := make([]float32, len(tagVecs))
	for i, tv := range tagVecs {
		if len(tv) != len(audio) {
			return nil, fmt.Errorf("clap: dimension mismatch: audio %d vs tag %d", len(audio), len(tv))
		}
		var dot float64
		for j := range tv {
			dot += float64(audio[j]) * float64(tv[j])
		}
		out[i] = float32(dot)
	}
	return out, nil
}

// TopK selects the k highest-scoring tags. k is clamped to the
// vocabulary size; requesting more than available returns all of them.
// Equal scores rank the tag with the lower vocabulary index first, so
// results are reproducible even for artificial inputs that tie.
func TopK(vocab *Vocabulary, scores []float32, k int) RankedTags {
	n := vocab.Len()
	if k > n {
		k = n
	}
	if k <= 0 {
		return RankedTags{}
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if scores[ia] != scores[ib] {
			return scores[ia] > scores[ib]
		}
		return ia < ib
	})

	ranked := make(RankedTags, k)
	for i := 0; i < k; i++ {
		ranked[i] = ScoredTag{Tag: vocab.Tag(idx[i]), Score: scores[idx[i]]}
	}
	return ranked
}
