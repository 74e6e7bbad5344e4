// Package retrieve scores stored rule texts against category and free-form
// queries. Retrieval is two-tier: an optional hybrid search sidecar is asked
// first, and on any failure the in-process keyword scorer answers instead.
// The sidecar is never allowed to fail a request.
package retrieve

import (
	"context"
	"sort"
	"strings"

	"github.com/complyco/copilot/internal/rulestore"
)

// Category keyword vocabularies for the fallback scorer. Phrases count as a
// unit: "personal data" must appear as a phrase to score.
var categoryKeywords = map[string][]string{
	"privacy": {"gdpr", "personal data", "processing", "controller", "processor"},
	"labor":   {"notice", "termination", "employment", "working hours"},
	"tax":     {"withholding", "tax", "vat", "gst"},
}

// minTokenLen excludes connective noise ("of", "to", "an") from free-form
// query scoring
const minTokenLen = 3

// Hit is a scored rule text
type Hit struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Engine retrieves rule texts relevant to a query
type Engine struct {
	store  *rulestore.Store
	hybrid *HybridClient // nil when no sidecar is configured
}

// NewEngine creates a retrieval engine over the given store. hybrid may be
// nil, in which case only the fallback tier runs.
func NewEngine(store *rulestore.Store, hybrid *HybridClient) *Engine {
	return &Engine{store: store, hybrid: hybrid}
}

// Search returns up to topK rule texts ordered by descending score.
// Zero-score texts are never returned. Ties keep store insertion order.
func (e *Engine) Search(ctx context.Context, query string, topK int) []Hit {
	if topK <= 0 {
		topK = 3
	}

	if e.hybrid != nil {
		if hits, err := e.hybrid.Retrieve(ctx, query, topK); err == nil && len(hits) > 0 {
			return hits
		}
		// Sidecar unavailable or empty: fall through to the local scorer.
	}

	return e.rank(tokenize(query), topK)
}

// SearchCategory scores the corpus against a category's configured keyword
// vocabulary. Unknown categories yield no hits.
func (e *Engine) SearchCategory(ctx context.Context, category string, topK int) []Hit {
	keywords, ok := categoryKeywords[strings.ToLower(category)]
	if !ok {
		return nil
	}
	if topK <= 0 {
		topK = 3
	}

	if e.hybrid != nil {
		query := category + " " + strings.Join(keywords, " ")
		if hits, err := e.hybrid.Retrieve(ctx, query, topK); err == nil && len(hits) > 0 {
			return hits
		}
	}

	return e.rank(keywords, topK)
}

// Categories lists the categories the engine knows how to score
func Categories() []string {
	out := make([]string, 0, len(categoryKeywords))
	for c := range categoryKeywords {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// rank scores every stored text by summed term occurrences and returns the
// topK non-zero hits
func (e *Engine) rank(terms []string, topK int) []Hit {
	if len(terms) == 0 {
		return nil
	}

	var hits []Hit
	for _, text := range e.store.All() {
		lower := strings.ToLower(text)
		score := 0
		for _, term := range terms {
			score += strings.Count(lower, term)
		}
		if score > 0 {
			hits = append(hits, Hit{Text: text, Score: float64(score)})
		}
	}

	// Stable: equal scores keep insertion order, biasing toward older rules
	// only in the sense of determinism, not preference.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// tokenize lowercases and word-splits a query, dropping short tokens
func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	var tokens []string
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()")
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
