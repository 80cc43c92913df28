package evaluation

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/searchcore-labs/retrieval-ranking-platform/pkg/errors"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestPrecisionAtK(t *testing.T) {
	relevance := []int{1, 1, 0, 1, 0, 1, 0, 0, 0, 1}

	tests := []struct {
		name string
		k    int
		want float64
	}{
		{"full sequence", 10, 0.5},
		{"prefix", 4, 0.75},
		{"k exceeds length (capped)", 50, 0.5},
		{"k zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrecisionAtK(relevance, tt.k)
			if err != nil {
				t.Fatalf("PrecisionAtK: %v", err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("PrecisionAtK(k=%d) = %v, want %v", tt.k, got, tt.want)
			}
		})
	}
}

func TestPrecisionAtKNegative(t *testing.T) {
	_, err := PrecisionAtK([]int{1}, -1)
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAveragePrecision(t *testing.T) {
	tests := []struct {
		name      string
		relevance []int
		want      float64
	}{
		{"reference sequence", []int{1, 1, 0, 1, 0, 1, 0, 0, 0, 1}, 0.78333333333333333},
		{"nothing relevant", []int{0, 0, 0}, 0},
		{"empty", nil, 0},
		{"all relevant", []int{1, 1, 1}, 1},
		{"graded labels count as relevant", []int{3, 0, 2}, (1.0 + 2.0/3.0) / 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AveragePrecision(tt.relevance); !almostEqual(got, tt.want) {
				t.Errorf("AveragePrecision(%v) = %v, want %v", tt.relevance, got, tt.want)
			}
		})
	}
}

func TestMeanAveragePrecision(t *testing.T) {
	relevances := [][]int{
		{1, 1, 0, 1},
		{0, 1, 0},
		{0, 0, 1},
	}
	got := MeanAveragePrecision(relevances)
	if !almostEqual(got, 0.5833333333333333) {
		t.Errorf("MAP = %v, want 0.5833333333333333", got)
	}

	// MAP is the arithmetic mean of the per-sequence APs.
	sum := 0.0
	for _, r := range relevances {
		sum += AveragePrecision(r)
	}
	if !almostEqual(got, sum/3) {
		t.Errorf("MAP = %v, want mean of APs %v", got, sum/3)
	}

	if MeanAveragePrecision(nil) != 0 {
		t.Error("MAP of empty input should be 0")
	}
}

func TestDCGAtK(t *testing.T) {
	got, err := DCGAtK([]float64{3, 2, 3, 0, 0, 1, 2, 2, 3, 0}, 10)
	if err != nil {
		t.Fatalf("DCGAtK: %v", err)
	}
	if !almostEqual(got, 9.6051177391888114) {
		t.Errorf("DCG = %v, want 9.6051177391888114", got)
	}
}

func TestDCGAtKEdgeCases(t *testing.T) {
	if got, err := DCGAtK(nil, 5); err != nil || got != 0 {
		t.Errorf("DCG of empty gains = %v, %v, want 0, nil", got, err)
	}
	if got, err := DCGAtK([]float64{7}, 1); err != nil || got != 7 {
		t.Errorf("DCG first position = %v, %v, want undiscounted 7, nil", got, err)
	}
	if _, err := DCGAtK([]float64{1}, -2); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("negative k err = %v, want ErrInvalidInput", err)
	}
}

func TestNDCGAtK(t *testing.T) {
	got, err := NDCGAtK([]float64{2, 1, 2, 0}, 4)
	if err != nil {
		t.Fatalf("NDCGAtK: %v", err)
	}
	if !almostEqual(got, 0.9203032077642922) {
		t.Errorf("NDCG = %v, want 0.9203032077642922", got)
	}
}

func TestNDCGAtKProperties(t *testing.T) {
	sequences := [][]float64{
		{3, 2, 3, 0, 0, 1, 2, 2, 3, 0},
		{0, 0, 3},
		{1},
		{2, 2, 2},
	}
	for _, gains := range sequences {
		got, err := NDCGAtK(gains, len(gains))
		if err != nil {
			t.Fatalf("NDCGAtK(%v): %v", gains, err)
		}
		if got > 1+1e-12 {
			t.Errorf("NDCG(%v) = %v, exceeds 1", gains, got)
		}
	}

	// All-zero gains have ideal DCG 0; the metric is defined as 0.
	got, err := NDCGAtK([]float64{0, 0, 0}, 3)
	if err != nil || got != 0 {
		t.Errorf("NDCG of all-zero gains = %v, %v, want 0, nil", got, err)
	}

	// A perfectly ordered sequence is ideal.
	got, err = NDCGAtK([]float64{3, 2, 1}, 3)
	if err != nil {
		t.Fatalf("NDCGAtK: %v", err)
	}
	if !almostEqual(got, 1) {
		t.Errorf("NDCG of ideal ordering = %v, want 1", got)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want float64
	}{
		{"reference overlap", []int{1, 2, 3, 4, 5}, []int{2, 4, 6, 8, 10}, 0.25},
		{"both empty", nil, nil, 0},
		{"identical", []int{7, 8}, []int{7, 8}, 1},
		{"disjoint", []int{1}, []int{2}, 0},
		{"duplicates ignored", []int{1, 1, 2}, []int{2, 2}, 0.5},
		{"one empty", []int{1, 2}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JaccardSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("Jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if sym := JaccardSimilarity(tt.b, tt.a); !almostEqual(got, sym) {
				t.Errorf("Jaccard not symmetric: %v vs %v", got, sym)
			}
		})
	}
}
