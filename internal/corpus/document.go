// Package corpus holds the document collection primitives: tokenized
// documents, the vocabulary with its reserved unknown token, and the text
// cleaning pipeline that feeds both.
package corpus

// TokenizedDocument is a document after cleaning: an integer ID plus the
// ordered title and body token sequences. Immutable once created.
type TokenizedDocument struct {
	ID    int
	Title []string
	Body  []string
}

// Tokens returns the concatenated title and body tokens.
func (d TokenizedDocument) Tokens() []string {
	tokens := make([]string, 0, len(d.Title)+len(d.Body))
	tokens = append(tokens, d.Title...)
	tokens = append(tokens, d.Body...)
	return tokens
}

// Len returns the total token count across title and body.
func (d TokenizedDocument) Len() int {
	return len(d.Title) + len(d.Body)
}

// RawDocument is an unprocessed document as loaded from the corpus store.
type RawDocument struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Tokenize cleans a raw document into its tokenized form.
func (d RawDocument) Tokenize() TokenizedDocument {
	return TokenizedDocument{
		ID:    d.ID,
		Title: Clean(d.Title),
		Body:  Clean(d.Body),
	}
}

// TokenizeAll cleans a batch of raw documents, preserving order.
func TokenizeAll(raw []RawDocument) []TokenizedDocument {
	docs := make([]TokenizedDocument, len(raw))
	for i, r := range raw {
		docs[i] = r.Tokenize()
	}
	return docs
}
