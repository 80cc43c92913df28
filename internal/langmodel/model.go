// Package langmodel builds the unigram language models used by
// query-likelihood retrieval: one model per document plus an aggregated
// collection model that serves as the smoothing prior.
package langmodel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
)

// CollectionID marks a model aggregated over the whole collection rather
// than a single document.
const CollectionID = -1

// Model is a unigram frequency model. Total carries the add-one smoothing
// mass for each constituent document up front: for a document model over n
// tokens and a vocabulary of V terms, Total = n + V, and a term's
// probability is (count+Docs)/Total. Collection models are the elementwise
// sum of their constituents, so Total and Docs sum as well.
type Model struct {
	ID     int
	Counts map[string]int
	Total  int
	Docs   int
}

// NewDocumentModel builds the unigram model for one document given the
// vocabulary size used for smoothing mass.
func NewDocumentModel(doc corpus.TokenizedDocument, vocabSize int) *Model {
	counts := make(map[string]int)
	n := 0
	for _, token := range doc.Tokens() {
		counts[token]++
		n++
	}
	return &Model{
		ID:     doc.ID,
		Counts: counts,
		Total:  n + vocabSize,
		Docs:   1,
	}
}

// BuildDocumentModels constructs one model per document, in input order.
// Documents are independent, so the build fans out across a worker group
// and each goroutine writes only its own slot.
func BuildDocumentModels(ctx context.Context, docs []corpus.TokenizedDocument, vocabSize int) ([]*Model, error) {
	models := make([]*Model, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, doc := range docs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			models[i] = NewDocumentModel(doc, vocabSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

// NewCollectionModel aggregates per-document models into the collection
// model: counts sum elementwise, totals and member counts add.
func NewCollectionModel(models []*Model) *Model {
	collection := &Model{
		ID:     CollectionID,
		Counts: make(map[string]int),
	}
	for _, m := range models {
		for token, count := range m.Counts {
			collection.Counts[token] += count
		}
		collection.Total += m.Total
		collection.Docs += m.Docs
	}
	return collection
}

// Count returns the stored frequency for token, zero when unseen.
func (m *Model) Count(token string) int {
	return m.Counts[token]
}
