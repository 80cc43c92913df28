// Package index provides the inverted index that backs candidate retrieval.
// The index is built once from a finalized collection and is read-only
// afterwards, so concurrent lookups need no locking.
package index

import (
	"sort"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
)

// Inverted maps each token to the ascending, duplicate-free list of
// document ids containing it in title or body.
type Inverted struct {
	postings map[string][]int
	docCount int
}

// Build constructs an Inverted index over the collection. Postings are
// sorted ascending by document id so downstream candidate ordering is
// reproducible regardless of input order.
func Build(docs []corpus.TokenizedDocument) *Inverted {
	seen := make(map[string]map[int]struct{})
	for _, doc := range docs {
		for _, token := range doc.Tokens() {
			docSet, ok := seen[token]
			if !ok {
				docSet = make(map[int]struct{})
				seen[token] = docSet
			}
			docSet[doc.ID] = struct{}{}
		}
	}

	postings := make(map[string][]int, len(seen))
	for token, docSet := range seen {
		ids := make([]int, 0, len(docSet))
		for id := range docSet {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		postings[token] = ids
	}
	return &Inverted{postings: postings, docCount: len(docs)}
}

// Postings returns the posting list for token. A token absent from the
// index yields an empty list, never an error.
func (idx *Inverted) Postings(token string) []int {
	return idx.postings[token]
}

// Candidates returns the union of the posting lists for every query token,
// ascending by document id.
func (idx *Inverted) Candidates(query []string) []int {
	docSet := make(map[int]struct{})
	for _, token := range query {
		for _, id := range idx.postings[token] {
			docSet[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(docSet))
	for id := range docSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Terms returns the number of distinct indexed tokens.
func (idx *Inverted) Terms() int {
	return len(idx.postings)
}

// DocCount returns the number of documents the index was built from.
func (idx *Inverted) DocCount() int {
	return idx.docCount
}
