package ranker

import (
	"fmt"
	"math"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
	apperrors "github.com/searchcore-labs/retrieval-ranking-platform/pkg/errors"
)

// Default BM25 parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// TermFrequency counts each token over a document's combined title and
// body.
func TermFrequency(doc corpus.TokenizedDocument) map[string]int {
	tf := make(map[string]int)
	for _, token := range doc.Tokens() {
		tf[token]++
	}
	return tf
}

// DocumentFrequency counts, for every token, the number of documents in
// docs containing it at least once.
func DocumentFrequency(docs []corpus.TokenizedDocument) map[string]int {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, token := range doc.Tokens() {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			df[token]++
		}
	}
	return df
}

// InverseDocumentFrequency computes idf(t) = ln(n/df(t)) for every term in
// df. A zero document frequency yields idf 0: the term appears in no
// candidate and contributes nothing. That cannot happen when candidates
// come from the index, but callers may supply candidate sets directly.
func InverseDocumentFrequency(df map[string]int, n int) map[string]float64 {
	idf := make(map[string]float64, len(df))
	for term, freq := range df {
		if freq == 0 {
			idf[term] = 0
			continue
		}
		idf[term] = math.Log(float64(n) / float64(freq))
	}
	return idf
}

// BM25 scores every candidate document for the query and returns them
// best-first. Document frequency is computed over the candidate set, per
// the reference behavior. Ties keep candidate encounter order. An empty
// query scores every candidate 0 in input order; an empty candidate set
// returns an empty result. topk <= 0 returns all candidates.
func BM25(query []string, docs []corpus.TokenizedDocument, k1, b float64, topk int) ([]ScoredDoc, error) {
	if k1 < 0 {
		return nil, fmt.Errorf("%w: k1 must be non-negative, got %v", apperrors.ErrInvalidInput, k1)
	}
	if b < 0 || b > 1 {
		return nil, fmt.Errorf("%w: b must be in [0,1], got %v", apperrors.ErrInvalidInput, b)
	}
	if len(docs) == 0 {
		return []ScoredDoc{}, nil
	}

	n := len(docs)
	df := DocumentFrequency(docs)
	idf := InverseDocumentFrequency(df, n)

	totalLen := 0
	for _, doc := range docs {
		totalLen += doc.Len()
	}
	avgdl := float64(totalLen) / float64(n)

	results := make([]ScoredDoc, 0, n)
	for _, doc := range docs {
		tf := TermFrequency(doc)
		docLen := float64(doc.Len())
		score := 0.0
		for _, term := range query {
			freq := float64(tf[term])
			if freq == 0 {
				continue
			}
			denom := freq + k1*(1-b+b*docLen/avgdl)
			score += idf[term] * (freq * (k1 + 1)) / denom
		}
		results = append(results, ScoredDoc{DocID: doc.ID, Score: score})
	}
	return sortAndTruncate(results, topk), nil
}
