package langmodel

import (
	"context"
	"reflect"
	"testing"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
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

func TestNewDocumentModel(t *testing.T) {
	// Six tokens plus a seven-term vocabulary: the total carries one unit
	// of smoothing mass per vocabulary term.
	m := NewDocumentModel(letters(0, "abc", "def"), 7)

	if m.ID != 0 {
		t.Fatalf("ID = %d, want 0", m.ID)
	}
	if m.Total != 13 {
		t.Errorf("Total = %d, want 13", m.Total)
	}
	if m.Docs != 1 {
		t.Errorf("Docs = %d, want 1", m.Docs)
	}
	want := map[string]int{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1, "f": 1}
	if !reflect.DeepEqual(m.Counts, want) {
		t.Errorf("Counts = %v, want %v", m.Counts, want)
	}
}

func TestNewDocumentModelRepeatedTokens(t *testing.T) {
	m := NewDocumentModel(letters(3, "ab", "bccc"), 4)
	if got := m.Count("c"); got != 3 {
		t.Errorf("Count(c) = %d, want 3", got)
	}
	if got := m.Count("z"); got != 0 {
		t.Errorf("Count of unseen token = %d, want 0", got)
	}
	// 6 tokens + 4 vocabulary terms.
	if m.Total != 10 {
		t.Errorf("Total = %d, want 10", m.Total)
	}
}

func TestBuildDocumentModelsOrder(t *testing.T) {
	docs := []corpus.TokenizedDocument{
		letters(9, "ab", ""),
		letters(4, "cd", ""),
		letters(7, "ee", ""),
	}
	models, err := BuildDocumentModels(context.Background(), docs, 5)
	if err != nil {
		t.Fatalf("BuildDocumentModels: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("len = %d, want 3", len(models))
	}
	for i, wantID := range []int{9, 4, 7} {
		if models[i].ID != wantID {
			t.Errorf("models[%d].ID = %d, want %d", i, models[i].ID, wantID)
		}
	}
}

func TestBuildDocumentModelsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := make([]corpus.TokenizedDocument, 100)
	for i := range docs {
		docs[i] = letters(i, "ab", "cd")
	}
	if _, err := BuildDocumentModels(ctx, docs, 5); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestNewCollectionModel(t *testing.T) {
	models := []*Model{
		NewDocumentModel(letters(0, "abc", ""), 5),
		NewDocumentModel(letters(1, "cde", ""), 5),
		NewDocumentModel(letters(2, "aeb", ""), 5),
	}
	collection := NewCollectionModel(models)

	if collection.ID != CollectionID {
		t.Fatalf("ID = %d, want %d", collection.ID, CollectionID)
	}
	if collection.Total != 24 {
		t.Errorf("Total = %d, want 24", collection.Total)
	}
	if collection.Docs != 3 {
		t.Errorf("Docs = %d, want 3", collection.Docs)
	}
	want := map[string]int{"a": 2, "b": 2, "c": 2, "d": 1, "e": 2}
	if !reflect.DeepEqual(collection.Counts, want) {
		t.Errorf("Counts = %v, want %v", collection.Counts, want)
	}

	// Total must equal the sum of counts plus the carried smoothing mass.
	sum := 0
	for _, c := range collection.Counts {
		sum += c
	}
	if collection.Total != sum+3*5 {
		t.Errorf("Total = %d, want counts %d + smoothing mass %d", collection.Total, sum, 3*5)
	}
}
