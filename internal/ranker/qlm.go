package ranker

import (
	"fmt"
	"math"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/langmodel"
	apperrors "github.com/searchcore-labs/retrieval-ranking-platform/pkg/errors"
)

// DefaultAlpha is the default document/collection interpolation weight.
const DefaultAlpha = 0.75

// rawProbability returns the smoothed unigram probability of word under m:
// (count + members) / total. The model's total already carries the add-one
// mass per member, so unseen words keep non-zero probability as long as
// the model is non-degenerate.
func rawProbability(m *langmodel.Model, word string) float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Count(word)+m.Docs) / float64(m.Total)
}

// WordProbability returns the probability of word under m. With normalize
// set it returns the natural log instead; a zero probability is then a
// domain error rather than -Inf.
func WordProbability(m *langmodel.Model, word string, normalize bool) (float64, error) {
	p := rawProbability(m, word)
	if !normalize {
		return p, nil
	}
	if p <= 0 {
		return 0, fmt.Errorf("%w: word %q under model %d", apperrors.ErrZeroProbability, word, m.ID)
	}
	return math.Log(p), nil
}

// SentenceProbability combines per-token probabilities under the unigram
// independence assumption: a product, or a sum of logs when normalized.
func SentenceProbability(m *langmodel.Model, tokens []string, normalize bool) (float64, error) {
	if normalize {
		sum := 0.0
		for _, token := range tokens {
			logp, err := WordProbability(m, token, true)
			if err != nil {
				return 0, err
			}
			sum += logp
		}
		return sum, nil
	}
	prod := 1.0
	for _, token := range tokens {
		p, err := WordProbability(m, token, false)
		if err != nil {
			return 0, err
		}
		prod *= p
	}
	return prod, nil
}

// InterpolatedSentenceProbability scores tokens under Jelinek–Mercer
// smoothing: each token's probability is
// alpha·P(t|doc) + (1−alpha)·P(t|collection), combined as a product or a
// sum of logs. alpha=1 degenerates to the raw document model, alpha=0 to
// the collection model. Without normalization a token unseen by both
// models collapses the whole sentence probability to 0 — documented
// behavior. Under log combination the same case is a domain error.
func InterpolatedSentenceProbability(
	doc *langmodel.Model,
	collection *langmodel.Model,
	tokens []string,
	alpha float64,
	normalize bool,
) (float64, error) {
	if alpha < 0 || alpha > 1 {
		return 0, fmt.Errorf("%w: alpha must be in [0,1], got %v", apperrors.ErrInvalidInput, alpha)
	}

	result := 1.0
	if normalize {
		result = 0.0
	}
	for _, token := range tokens {
		p := alpha*rawProbability(doc, token) + (1-alpha)*rawProbability(collection, token)
		if normalize {
			if p <= 0 {
				return 0, fmt.Errorf("%w: token %q under models %d/%d",
					apperrors.ErrZeroProbability, token, doc.ID, collection.ID)
			}
			result += math.Log(p)
		} else {
			result *= p
		}
	}
	return result, nil
}

// RankQLM scores the query under every document model, interpolated with
// the collection model, and returns documents best-first. Models are
// scored in slice order and ties keep that order. topk <= 0 returns all.
func RankQLM(
	models []*langmodel.Model,
	collection *langmodel.Model,
	tokens []string,
	alpha float64,
	normalize bool,
	topk int,
) ([]ScoredDoc, error) {
	results := make([]ScoredDoc, 0, len(models))
	for _, m := range models {
		score, err := InterpolatedSentenceProbability(m, collection, tokens, alpha, normalize)
		if err != nil {
			return nil, fmt.Errorf("scoring document %d: %w", m.ID, err)
		}
		results = append(results, ScoredDoc{DocID: m.ID, Score: score})
	}
	return sortAndTruncate(results, topk), nil
}
