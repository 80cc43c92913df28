// Package store loads the fixed document collection and the graded
// relevance judgments used for offline evaluation, either from Postgres or
// from JSON files for local development.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/postgres"
)

// JudgedQuery is an evaluation query with its graded relevance judgments
// (document id to relevance grade; missing documents are grade 0).
type JudgedQuery struct {
	ID        int        `json:"id"`
	Text      string     `json:"text"`
	Judgments []Judgment `json:"judgments"`
}

// Judgment grades one document's relevance for a query.
type Judgment struct {
	DocID     int `json:"doc_id"`
	Relevance int `json:"relevance"`
}

// Grades returns the judgment list as a docID→grade lookup.
func (q JudgedQuery) Grades() map[int]int {
	grades := make(map[int]int, len(q.Judgments))
	for _, j := range q.Judgments {
		grades[j.DocID] = j.Relevance
	}
	return grades
}

// Store reads documents and judgments from Postgres.
type Store struct {
	client *postgres.Client
	logger *slog.Logger
}

// New creates a Store over an established Postgres client.
func New(client *postgres.Client) *Store {
	return &Store{
		client: client,
		logger: slog.Default().With("component", "corpus-store"),
	}
}

// EnsureSchema creates the corpus tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id INTEGER PRIMARY KEY,
				title TEXT NOT NULL,
				body TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS queries (
				id INTEGER PRIMARY KEY,
				text TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS judgments (
				query_id INTEGER NOT NULL REFERENCES queries(id),
				doc_id INTEGER NOT NULL REFERENCES documents(id),
				relevance INTEGER NOT NULL,
				PRIMARY KEY (query_id, doc_id)
			)`,
		}
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("creating corpus schema: %w", err)
			}
		}
		return nil
	})
}

// LoadDocuments reads the whole collection, ordered by document id.
func (s *Store) LoadDocuments(ctx context.Context) ([]corpus.RawDocument, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT id, title, body FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := make([]corpus.RawDocument, 0)
	for rows.Next() {
		var doc corpus.RawDocument
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Body); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	s.logger.Info("documents loaded", "count", len(docs))
	return docs, nil
}

// LoadJudgedQueries reads every evaluation query with its judgments,
// ordered by query id.
func (s *Store) LoadJudgedQueries(ctx context.Context) ([]JudgedQuery, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT q.id, q.text, j.doc_id, j.relevance
		 FROM queries q
		 JOIN judgments j ON j.query_id = q.id
		 ORDER BY q.id, j.doc_id`)
	if err != nil {
		return nil, fmt.Errorf("querying judgments: %w", err)
	}
	defer rows.Close()

	queries := make([]JudgedQuery, 0)
	byID := make(map[int]int)
	for rows.Next() {
		var (
			id        int
			text      string
			docID     int
			relevance int
		)
		if err := rows.Scan(&id, &text, &docID, &relevance); err != nil {
			return nil, fmt.Errorf("scanning judgment row: %w", err)
		}
		idx, ok := byID[id]
		if !ok {
			queries = append(queries, JudgedQuery{ID: id, Text: text})
			idx = len(queries) - 1
			byID[id] = idx
		}
		queries[idx].Judgments = append(queries[idx].Judgments, Judgment{
			DocID:     docID,
			Relevance: relevance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating judgment rows: %w", err)
	}
	s.logger.Info("judged queries loaded", "count", len(queries))
	return queries, nil
}

// LoadCorpusFile reads a JSON array of raw documents from path.
func LoadCorpusFile(path string) ([]corpus.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	var docs []corpus.RawDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}
	return docs, nil
}

// LoadJudgmentsFile reads a JSON array of judged queries from path.
func LoadJudgmentsFile(path string) ([]JudgedQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading judgments file %s: %w", path, err)
	}
	var queries []JudgedQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parsing judgments file %s: %w", path, err)
	}
	return queries, nil
}
