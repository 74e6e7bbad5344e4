// Package region decides which rule texts apply to a jurisdiction. Raw
// keyword retrieval returns cross-jurisdiction false positives (a rule
// mentioning "privacy" matches everywhere), so the filter layers inclusion
// keywords and asymmetric exclusion carve-outs on top of search results.
package region

import (
	"context"
	"strings"
	"unicode"

	"github.com/complyco/copilot/internal/retrieve"
)

// Inclusion keywords per jurisdiction. A region missing from this map is
// default-allow.
var regionKeywords = map[string][]string{
	"EU": {"eu", "european", "gdpr", "directive", "member state"},
	"US": {"us", "usa", "united states", "american", "federal", "ccpa", "california"},
	"IN": {"india", "indian", "dpdp", "gst"},
	"UK": {"uk", "united kingdom", "british", "gdpr"},
}

// Strong single-jurisdiction signals used by the exclusion carve-outs
var (
	euStrongTerms = []string{"gdpr", "european", "data subject", "member state"}
	usStrongTerms = []string{"ccpa", "california", "federal"}
	usAnyTerms    = []string{"ccpa", "california", "federal", "american", "united states"}
	euAnyTerms    = []string{"gdpr", "eu", "european", "directive"}
)

// Extra query terms appended when filtering leaves nothing; a second,
// region-anchored retrieval pass runs before giving up.
var escalationTerms = map[string]string{
	"EU": "eu european gdpr",
	"US": "us united states ccpa",
	"IN": "india indian",
	"UK": "uk united kingdom",
}

// overFetchFactor widens retrieval before filtering, since the filter can
// reject most hits
const overFetchFactor = 3

// Filter scopes retrieval results to a jurisdiction
type Filter struct {
	engine *retrieve.Engine
}

// NewFilter creates a region filter over the given retrieval engine
func NewFilter(engine *retrieve.Engine) *Filter {
	return &Filter{engine: engine}
}

// IsApplicable reports whether a rule text is eligible for the region.
//
// The US and EU exclusions are deliberately asymmetric and must stay that
// way: a GDPR-only rule matching "privacy" is noise for a US review, and a
// CCPA-only rule is noise for an EU review, but IN and UK stay default-allow
// because their corpora rarely collide.
func IsApplicable(ruleText, region string) bool {
	keywords, ok := regionKeywords[strings.ToUpper(region)]
	if !ok {
		return true
	}

	lower := strings.ToLower(ruleText)
	if !containsAnyTerm(lower, keywords) {
		return false
	}

	switch strings.ToUpper(region) {
	case "US":
		// A rule carrying EU-specific language with zero US terms slipped in
		// via a generic keyword: exclude it.
		if containsAnyTerm(lower, euStrongTerms) && !containsAnyTerm(lower, usAnyTerms) {
			return false
		}
	case "EU":
		if containsAnyTerm(lower, usStrongTerms) && !containsAnyTerm(lower, euAnyTerms) {
			return false
		}
	}
	return true
}

// RulesFor retrieves up to topK region-applicable rule texts for a category.
// Retrieval over-fetches before filtering; if filtering rejects everything, a
// region-anchored query runs once before returning empty.
func (f *Filter) RulesFor(ctx context.Context, category, region string, topK int) []retrieve.Hit {
	if topK <= 0 {
		topK = 3
	}

	hits := f.engine.SearchCategory(ctx, category, topK*overFetchFactor)
	filtered := filterHits(hits, region)

	if len(filtered) == 0 {
		if extra, ok := escalationTerms[strings.ToUpper(region)]; ok {
			hits = f.engine.Search(ctx, category+" "+extra, topK*overFetchFactor)
			filtered = filterHits(hits, region)
		}
	}

	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered
}

func filterHits(hits []retrieve.Hit, region string) []retrieve.Hit {
	var out []retrieve.Hit
	for _, h := range hits {
		if IsApplicable(h.Text, region) {
			out = append(out, h)
		}
	}
	return out
}

// containsAnyTerm reports whether any term occurs in text as a whole word
// (or whole phrase). Substring matching alone would let "us" match "must".
func containsAnyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if containsTerm(text, term) {
			return true
		}
	}
	return false
}

func containsTerm(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		abs := start + idx
		end := abs + len(term)
		beforeOK := abs == 0 || !isWordChar(rune(text[abs-1]))
		afterOK := end >= len(text) || !isWordChar(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		start = abs + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
