package retrieve

import (
	"strings"
	"unicode"
)

// Window bounds for context snippets. Full rule documents can run to many
// pages; downstream consumers only want the passage around the match.
const (
	contextBefore = 200
	contextAfter  = 300
)

// highlightMarker wraps matched terms in the extracted snippet
const highlightMarker = "**"

// ExtractContext returns a bounded window of text around the best match for
// query, with matched terms highlighted. An exact phrase match wins over any
// single-word match; among word matches the earliest position wins. Returns
// the full (possibly truncated) head of the text when nothing matches.
func ExtractContext(text, query string) string {
	lower := strings.ToLower(text)
	phrase := strings.ToLower(strings.TrimSpace(query))

	var pos, matchLen int
	var terms []string

	if idx := strings.Index(lower, phrase); phrase != "" && idx >= 0 {
		pos, matchLen = idx, len(phrase)
		terms = []string{phrase}
	} else {
		pos = -1
		for _, token := range tokenize(query) {
			idx := strings.Index(lower, token)
			if idx < 0 {
				continue
			}
			terms = append(terms, token)
			if pos < 0 || idx < pos {
				pos, matchLen = idx, len(token)
			}
		}
		if pos < 0 {
			// No match anywhere: return a plain bounded head.
			if len(text) > contextBefore+contextAfter {
				return text[:contextBefore+contextAfter] + "..."
			}
			return text
		}
	}

	start := pos - contextBefore
	if start < 0 {
		start = 0
	}
	end := pos + matchLen + contextAfter
	if end > len(text) {
		end = len(text)
	}

	snippet := highlightTerms(text[start:end], terms)
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet += "..."
	}
	return snippet
}

// highlightTerms wraps each case-insensitive occurrence of the terms in the
// highlight marker, preserving the original casing of the snippet
func highlightTerms(snippet string, terms []string) string {
	for _, term := range terms {
		if term == "" {
			continue
		}
		var b strings.Builder
		lower := strings.ToLower(snippet)
		rest := 0
		for {
			idx := strings.Index(lower[rest:], term)
			if idx < 0 {
				b.WriteString(snippet[rest:])
				break
			}
			abs := rest + idx
			if !wholeMatch(lower, abs, len(term)) {
				b.WriteString(snippet[rest : abs+len(term)])
				rest = abs + len(term)
				continue
			}
			b.WriteString(snippet[rest:abs])
			b.WriteString(highlightMarker)
			b.WriteString(snippet[abs : abs+len(term)])
			b.WriteString(highlightMarker)
			rest = abs + len(term)
		}
		snippet = b.String()
	}
	return snippet
}

// wholeMatch avoids highlighting a term embedded inside a larger word
// ("tax" in "taxonomy")
func wholeMatch(lower string, pos, length int) bool {
	if pos > 0 && isWordChar(rune(lower[pos-1])) {
		return false
	}
	end := pos + length
	if end < len(lower) && isWordChar(rune(lower[end])) {
		return false
	}
	return true
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
