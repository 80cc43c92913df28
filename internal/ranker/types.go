// Package ranker implements the two deterministic retrieval scoring
// algorithms: BM25 over a candidate set and query-likelihood language
// models with Jelinek–Mercer smoothing.
package ranker

import (
	"context"
	"sort"
)

// ScoredDoc pairs a document id with its retrieval score.
type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// Strategy is a retrieval model that ranks the collection for a query.
// BM25 and QLM implement it; a learned reranker can be swapped in by the
// caller through the same interface.
type Strategy interface {
	Name() string
	Rank(ctx context.Context, query string, topk int) ([]ScoredDoc, error)
}

// sortAndTruncate orders results by descending score. The sort is stable,
// so ties keep their candidate encounter order; this affects evaluation
// determinism and must not change. topk <= 0 returns everything.
func sortAndTruncate(results []ScoredDoc, topk int) []ScoredDoc {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topk > 0 && len(results) > topk {
		results = results[:topk]
	}
	return results
}
