// Package session assembles the read-only retrieval session: vocabulary,
// tokenized documents, inverted index, and language models, built once
// from a finalized collection. Every scoring call operates on shared
// immutable state, so sessions are safe for concurrent queries.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/index"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/langmodel"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/ranker"
	apperrors "github.com/searchcore-labs/retrieval-ranking-platform/pkg/errors"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/tracing"
)

// Params are the retrieval model parameters a session is built with.
type Params struct {
	K1        float64
	B         float64
	Alpha     float64
	Normalize bool
}

// DefaultParams returns the reference parameter values.
func DefaultParams() Params {
	return Params{
		K1:    ranker.DefaultK1,
		B:     ranker.DefaultB,
		Alpha: ranker.DefaultAlpha,
	}
}

// Session owns the structures loaded for one document collection.
type Session struct {
	vocab      *corpus.Vocabulary
	docs       []corpus.TokenizedDocument
	docsByID   map[int]corpus.TokenizedDocument
	index      *index.Inverted
	models     []*langmodel.Model
	collection *langmodel.Model
	params     Params
	logger     *slog.Logger
}

// New builds a Session from a tokenized collection: vocabulary, inverted
// index, per-document language models (built in parallel), and the
// aggregated collection model.
func New(ctx context.Context, docs []corpus.TokenizedDocument, params Params) (*Session, error) {
	if len(docs) == 0 {
		return nil, apperrors.ErrCorpusEmpty
	}
	if params.K1 < 0 {
		return nil, fmt.Errorf("%w: k1 must be non-negative, got %v", apperrors.ErrInvalidInput, params.K1)
	}
	if params.B < 0 || params.B > 1 {
		return nil, fmt.Errorf("%w: b must be in [0,1], got %v", apperrors.ErrInvalidInput, params.B)
	}
	if params.Alpha < 0 || params.Alpha > 1 {
		return nil, fmt.Errorf("%w: alpha must be in [0,1], got %v", apperrors.ErrInvalidInput, params.Alpha)
	}

	vocab := corpus.BuildVocabulary(docs)
	inverted := index.Build(docs)

	models, err := langmodel.BuildDocumentModels(ctx, docs, vocab.Size())
	if err != nil {
		return nil, fmt.Errorf("building language models: %w", err)
	}
	collection := langmodel.NewCollectionModel(models)

	docsByID := make(map[int]corpus.TokenizedDocument, len(docs))
	for _, doc := range docs {
		docsByID[doc.ID] = doc
	}

	s := &Session{
		vocab:      vocab,
		docs:       docs,
		docsByID:   docsByID,
		index:      inverted,
		models:     models,
		collection: collection,
		params:     params,
		logger:     slog.Default().With("component", "session"),
	}
	s.logger.Info("session built",
		"docs", len(docs),
		"vocab_size", vocab.Size(),
		"index_terms", inverted.Terms(),
	)
	return s, nil
}

// PrepareQuery cleans a raw query and substitutes the unknown sentinel for
// out-of-vocabulary tokens.
func (s *Session) PrepareQuery(query string) []string {
	return s.vocab.ReplaceUnknown(corpus.Clean(query))
}

// BM25Search ranks index candidates for the query with BM25. Candidates
// are retrieved from the inverted index in ascending document-id order so
// tie-breaks are reproducible.
func (s *Session) BM25Search(ctx context.Context, query string, topk int) ([]ranker.ScoredDoc, error) {
	_, span := tracing.StartChildSpan(ctx, "bm25_search")
	defer span.End()

	tokens := s.PrepareQuery(query)
	candidateIDs := s.index.Candidates(tokens)
	candidates := make([]corpus.TokenizedDocument, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		candidates = append(candidates, s.docsByID[id])
	}
	span.SetAttr("candidates", len(candidates))

	if len(candidates) == 0 {
		return []ranker.ScoredDoc{}, nil
	}
	results, err := ranker.BM25(tokens, candidates, s.params.K1, s.params.B, topk)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("bm25 search",
		"query", query,
		"tokens", tokens,
		"candidates", len(candidates),
		"results", len(results),
	)
	return results, nil
}

// QLMSearch ranks every document model for the query under interpolated
// query-likelihood scoring.
func (s *Session) QLMSearch(ctx context.Context, query string, topk int) ([]ranker.ScoredDoc, error) {
	_, span := tracing.StartChildSpan(ctx, "qlm_search")
	defer span.End()

	tokens := s.PrepareQuery(query)
	results, err := ranker.RankQLM(s.models, s.collection, tokens, s.params.Alpha, s.params.Normalize, topk)
	if err != nil {
		return nil, err
	}
	span.SetAttr("results", len(results))
	s.logger.Debug("qlm search",
		"query", query,
		"tokens", tokens,
		"results", len(results),
	)
	return results, nil
}

// Strategy returns the named retrieval strategy, one of "bm25" or "qlm".
func (s *Session) Strategy(name string) (ranker.Strategy, error) {
	switch name {
	case "bm25":
		return bm25Strategy{s}, nil
	case "qlm":
		return qlmStrategy{s}, nil
	default:
		return nil, fmt.Errorf("%w: unknown retrieval model %q", apperrors.ErrInvalidInput, name)
	}
}

// Strategies returns all available retrieval strategies.
func (s *Session) Strategies() []ranker.Strategy {
	return []ranker.Strategy{bm25Strategy{s}, qlmStrategy{s}}
}

// DocCount returns the number of documents in the session's collection.
func (s *Session) DocCount() int {
	return len(s.docs)
}

// VocabSize returns the vocabulary size including the sentinel.
func (s *Session) VocabSize() int {
	return s.vocab.Size()
}

// IndexTerms returns the number of distinct indexed tokens.
func (s *Session) IndexTerms() int {
	return s.index.Terms()
}

// Document returns the tokenized document for id.
func (s *Session) Document(id int) (corpus.TokenizedDocument, bool) {
	doc, ok := s.docsByID[id]
	return doc, ok
}

// Params returns the session's retrieval parameters.
func (s *Session) Params() Params {
	return s.params
}

type bm25Strategy struct {
	s *Session
}

func (st bm25Strategy) Name() string {
	return "bm25"
}

func (st bm25Strategy) Rank(ctx context.Context, query string, topk int) ([]ranker.ScoredDoc, error) {
	return st.s.BM25Search(ctx, query, topk)
}

type qlmStrategy struct {
	s *Session
}

func (st qlmStrategy) Name() string {
	return "qlm"
}

func (st qlmStrategy) Rank(ctx context.Context, query string, topk int) ([]ranker.ScoredDoc, error) {
	return st.s.QLMSearch(ctx, query, topk)
}
