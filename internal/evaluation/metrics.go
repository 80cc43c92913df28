// Package evaluation provides ranking-quality metrics over relevance
// judgment sequences. All functions are pure and independent of the
// rankers that produced the sequences.
package evaluation

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/searchcore-labs/retrieval-ranking-platform/pkg/errors"
)

// PrecisionAtK returns the fraction of relevant (nonzero) labels among the
// first k positions. k is capped at the sequence length; a negative k is
// an input error.
func PrecisionAtK(relevance []int, k int) (float64, error) {
	if k < 0 {
		return 0, fmt.Errorf("%w: k must be non-negative, got %d", apperrors.ErrInvalidInput, k)
	}
	if k > len(relevance) {
		k = len(relevance)
	}
	if k == 0 {
		return 0, nil
	}
	relevant := 0
	for _, label := range relevance[:k] {
		if label != 0 {
			relevant++
		}
	}
	return float64(relevant) / float64(k), nil
}

// AveragePrecision returns the mean of precision@i over every position i
// holding a relevant label, or 0 when nothing is relevant.
func AveragePrecision(relevance []int) float64 {
	sum := 0.0
	relevant := 0
	for i, label := range relevance {
		if label == 0 {
			continue
		}
		relevant++
		sum += float64(relevant) / float64(i+1)
	}
	if relevant == 0 {
		return 0
	}
	return sum / float64(relevant)
}

// MeanAveragePrecision returns the arithmetic mean of AveragePrecision
// over all sequences, or 0 for an empty input.
func MeanAveragePrecision(relevances [][]int) float64 {
	if len(relevances) == 0 {
		return 0
	}
	sum := 0.0
	for _, relevance := range relevances {
		sum += AveragePrecision(relevance)
	}
	return sum / float64(len(relevances))
}

// DCGAtK returns the discounted cumulative gain over the first k graded
// gains: the first position contributes its full gain, position i >= 2
// contributes gains[i-1]/log2(i). k is capped at the sequence length; a
// negative k is an input error.
func DCGAtK(gains []float64, k int) (float64, error) {
	if k < 0 {
		return 0, fmt.Errorf("%w: k must be non-negative, got %d", apperrors.ErrInvalidInput, k)
	}
	if k > len(gains) {
		k = len(gains)
	}
	if k == 0 {
		return 0, nil
	}
	dcg := gains[0]
	for i := 2; i <= k; i++ {
		dcg += gains[i-1] / math.Log2(float64(i))
	}
	return dcg, nil
}

// NDCGAtK returns DCG@k normalized by the DCG of the descending-sorted
// gains. Defined as 0 when the ideal DCG is 0 (all gains zero). The
// result never exceeds 1.
func NDCGAtK(gains []float64, k int) (float64, error) {
	dcg, err := DCGAtK(gains, k)
	if err != nil {
		return 0, err
	}
	ideal := make([]float64, len(gains))
	copy(ideal, gains)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
	idcg, err := DCGAtK(ideal, k)
	if err != nil {
		return 0, err
	}
	if idcg == 0 {
		return 0, nil
	}
	return dcg / idcg, nil
}

// JaccardSimilarity returns |A∩B| / |A∪B| for two id sets given as
// slices (duplicates ignored). Defined as 0 when both sets are empty.
func JaccardSimilarity(a, b []int) float64 {
	setA := make(map[int]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[int]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}
	intersection := 0
	for id := range setA {
		if _, ok := setB[id]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
