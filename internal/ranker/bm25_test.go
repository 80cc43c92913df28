package ranker

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
	apperrors "github.com/searchcore-labs/retrieval-ranking-platform/pkg/errors"
)

func letters(id int, title, body string) corpus.TokenizedDocument {
	doc := corpus.TokenizedDocument{ID: id}
	for _, r := range title {
		doc.Title = append(doc.Title, string(r))
	}
	for _, r := range body {
		doc.Body = append(doc.Body, string(r))
	}
	return doc
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestTermFrequency(t *testing.T) {
	tf := TermFrequency(letters(0, "abcd", "defg"))
	want := map[string]int{"a": 1, "b": 1, "c": 1, "d": 2, "e": 1, "f": 1, "g": 1}
	for token, count := range want {
		if tf[token] != count {
			t.Errorf("tf[%q] = %d, want %d", token, tf[token], count)
		}
	}
	if len(tf) != len(want) {
		t.Errorf("len(tf) = %d, want %d", len(tf), len(want))
	}
}

func TestDocumentFrequency(t *testing.T) {
	docs := []corpus.TokenizedDocument{
		letters(0, "abc", "baa"),
		letters(1, "bcd", "dbd"),
		letters(2, "cde", "eec"),
	}
	df := DocumentFrequency(docs)
	want := map[string]int{"a": 1, "b": 2, "c": 3, "d": 2, "e": 1}
	for token, count := range want {
		if df[token] != count {
			t.Errorf("df[%q] = %d, want %d", token, df[token], count)
		}
	}
}

func TestInverseDocumentFrequency(t *testing.T) {
	df := map[string]int{"a": 1, "b": 2, "c": 3, "d": 2, "e": 1}
	idf := InverseDocumentFrequency(df, 3)
	want := map[string]float64{
		"a": 1.0986122886681098,
		"b": 0.4054651081081644,
		"c": 0.0,
		"d": 0.4054651081081644,
		"e": 1.0986122886681098,
	}
	for term, v := range want {
		if !almostEqual(idf[term], v) {
			t.Errorf("idf[%q] = %v, want %v", term, idf[term], v)
		}
	}
}

func TestInverseDocumentFrequencyZeroDF(t *testing.T) {
	idf := InverseDocumentFrequency(map[string]int{"ghost": 0}, 3)
	if idf["ghost"] != 0 {
		t.Errorf("idf of zero-df term = %v, want 0", idf["ghost"])
	}
}

func TestBM25ReferenceRanking(t *testing.T) {
	docs := []corpus.TokenizedDocument{
		letters(0, "a", "bc"),
		letters(1, "b", "cd"),
		letters(2, "c", "de"),
	}
	results, err := BM25([]string{"b", "c", "e"}, docs, 1.2, 0.75, 0)
	if err != nil {
		t.Fatalf("BM25: %v", err)
	}

	want := []ScoredDoc{
		{DocID: 2, Score: 1.0986122886681098},
		{DocID: 0, Score: 0.4054651081081644},
		{DocID: 1, Score: 0.4054651081081644},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i := range want {
		if results[i].DocID != want[i].DocID {
			t.Errorf("results[%d].DocID = %d, want %d", i, results[i].DocID, want[i].DocID)
		}
		if !almostEqual(results[i].Score, want[i].Score) {
			t.Errorf("results[%d].Score = %v, want %v", i, results[i].Score, want[i].Score)
		}
	}
}

func TestBM25SortedAndStable(t *testing.T) {
	docs := []corpus.TokenizedDocument{
		letters(4, "ab", "cd"),
		letters(2, "ab", "cd"),
		letters(9, "ab", "cd"),
	}
	results, err := BM25([]string{"a"}, docs, DefaultK1, DefaultB, 0)
	if err != nil {
		t.Fatalf("BM25: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("results not sorted descending at %d: %v", i, results)
		}
	}
	// Identical documents tie; encounter order must hold.
	for i, wantID := range []int{4, 2, 9} {
		if results[i].DocID != wantID {
			t.Errorf("results[%d].DocID = %d, want %d (stable tie-break)", i, results[i].DocID, wantID)
		}
	}
}

func TestBM25EmptyQuery(t *testing.T) {
	docs := []corpus.TokenizedDocument{
		letters(1, "ab", ""),
		letters(0, "cd", ""),
	}
	results, err := BM25(nil, docs, DefaultK1, DefaultB, 0)
	if err != nil {
		t.Fatalf("BM25: %v", err)
	}
	for i, wantID := range []int{1, 0} {
		if results[i].DocID != wantID || results[i].Score != 0 {
			t.Errorf("results[%d] = %+v, want doc %d with score 0", i, results[i], wantID)
		}
	}
}

func TestBM25EmptyCandidates(t *testing.T) {
	results, err := BM25([]string{"a"}, nil, DefaultK1, DefaultB, 0)
	if err != nil {
		t.Fatalf("BM25: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestBM25TopK(t *testing.T) {
	docs := []corpus.TokenizedDocument{
		letters(0, "a", "bc"),
		letters(1, "b", "cd"),
		letters(2, "c", "de"),
	}
	results, err := BM25([]string{"b", "c", "e"}, docs, 1.2, 0.75, 2)
	if err != nil {
		t.Fatalf("BM25: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].DocID != 2 {
		t.Errorf("results[0].DocID = %d, want 2", results[0].DocID)
	}
}

func TestBM25InvalidParams(t *testing.T) {
	docs := []corpus.TokenizedDocument{letters(0, "a", "")}
	tests := []struct {
		name  string
		k1, b float64
	}{
		{"negative k1", -0.1, 0.75},
		{"b below range", 1.2, -0.01},
		{"b above range", 1.2, 1.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BM25([]string{"a"}, docs, tt.k1, tt.b, 0)
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestBM25ScoresFinite(t *testing.T) {
	docs := make([]corpus.TokenizedDocument, 0, 20)
	for i := 0; i < 20; i++ {
		docs = append(docs, letters(i, "abcde", "fghij"))
	}
	results, err := BM25([]string{"a", "f", "j", "z"}, docs, DefaultK1, DefaultB, 0)
	if err != nil {
		t.Fatalf("BM25: %v", err)
	}
	for _, r := range results {
		if math.IsInf(r.Score, 0) || math.IsNaN(r.Score) {
			t.Fatalf("non-finite score for doc %d: %v", r.DocID, r.Score)
		}
	}
}

func BenchmarkBM25(b *testing.B) {
	docs := make([]corpus.TokenizedDocument, 0, 1000)
	for i := 0; i < 1000; i++ {
		docs = append(docs, letters(i, fmt.Sprintf("ab%c", 'a'+i%26), "cdefghij"))
	}
	query := []string{"a", "c", "j"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BM25(query, docs, DefaultK1, DefaultB, 10); err != nil {
			b.Fatal(err)
		}
	}
}
