package corpus

import "sort"

// UnknownToken is the reserved sentinel every out-of-vocabulary token maps
// to. Substitution happens before scoring so unknown terms contribute to
// frequency statistics as one consistent term instead of vanishing.
const UnknownToken = "<unk>"

// UnknownID is the sentinel's vocabulary id.
const UnknownID = 0

// Vocabulary is an immutable bidirectional token↔id mapping with occurrence
// frequencies. Id 0 is always the unknown-token sentinel; remaining ids are
// assigned by descending corpus frequency, ties broken alphabetically, so a
// rebuild over the same collection yields identical ids.
type Vocabulary struct {
	itos  []string
	stoi  map[string]int
	freqs map[string]int
}

// BuildVocabulary constructs a Vocabulary from a tokenized collection.
func BuildVocabulary(docs []TokenizedDocument) *Vocabulary {
	freqs := make(map[string]int)
	for _, doc := range docs {
		for _, token := range doc.Tokens() {
			freqs[token]++
		}
	}

	tokens := make([]string, 0, len(freqs))
	for token := range freqs {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freqs[tokens[i]] != freqs[tokens[j]] {
			return freqs[tokens[i]] > freqs[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	v := &Vocabulary{
		itos:  make([]string, 0, len(tokens)+1),
		stoi:  make(map[string]int, len(tokens)+1),
		freqs: freqs,
	}
	v.itos = append(v.itos, UnknownToken)
	v.stoi[UnknownToken] = UnknownID
	for _, token := range tokens {
		if token == UnknownToken {
			continue
		}
		v.stoi[token] = len(v.itos)
		v.itos = append(v.itos, token)
	}
	return v
}

// Size returns the number of distinct tokens, including the sentinel.
func (v *Vocabulary) Size() int {
	return len(v.itos)
}

// Contains reports whether token is in the vocabulary.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.stoi[token]
	return ok
}

// ID returns the id for token, or the sentinel id when absent.
func (v *Vocabulary) ID(token string) int {
	if id, ok := v.stoi[token]; ok {
		return id
	}
	return UnknownID
}

// Token returns the string for an id. Unmapped ids report ok=false.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.itos) {
		return "", false
	}
	return v.itos[id], true
}

// Frequency returns the corpus occurrence count for token.
func (v *Vocabulary) Frequency(token string) int {
	return v.freqs[token]
}

// ReplaceUnknown maps every out-of-vocabulary token in the sequence to the
// sentinel, returning a new slice.
func (v *Vocabulary) ReplaceUnknown(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		if v.Contains(token) {
			out[i] = token
		} else {
			out[i] = UnknownToken
		}
	}
	return out
}

// IDs maps a token sequence to vocabulary ids, substituting the sentinel id
// for unknown tokens.
func (v *Vocabulary) IDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, token := range tokens {
		ids[i] = v.ID(token)
	}
	return ids
}
