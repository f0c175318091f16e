// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "for": true, "to": true, "with": true,
}

// normalizeTitle lowercases, strips non-alphanumeric/non-whitespace runes,
// collapses whitespace, and removes stopwords. Used both for dedup's
// title key and for decomposing the query into comparable terms.
func normalizeTitle(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if !stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// normalizeTerms returns the deduplicated set of normalized terms in s,
// used for the relevance score's title/abstract overlap computation.
func normalizeTerms(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(normalizeTitle(s)) {
		out[w] = true
	}
	return out
}
