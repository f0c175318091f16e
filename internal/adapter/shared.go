// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"regexp"
	"strings"
)

var (
	jatsTagRe     = regexp.MustCompile(`<[^>]+>`)
	doiScavengeRe = regexp.MustCompile(`10\.\d{4,9}/[^\s]+`)
	arxivNewRe    = regexp.MustCompile(`\d{4}\.\d{4,5}(v\d+)?`)
	arxivOldRe    = regexp.MustCompile(`[a-z-]+/\d{7}(v\d+)?`)
)

// titleOrUnknown applies the one sanctioned sentinel string: absent
// titles render as "Unknown".
func titleOrUnknown(title string) string {
	title = normalizeWhitespace(title)
	if title == "" {
		return "Unknown"
	}
	return title
}

// normalizeWhitespace collapses runs of whitespace and trims the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripJATS removes inline XML/JATS tags from an abstract.
func stripJATS(s string) string {
	return jatsTagRe.ReplaceAllString(s, "")
}

// scavengeDOI extracts the first DOI-looking substring, or "" if none.
func scavengeDOI(s string) string {
	return doiScavengeRe.FindString(s)
}

// stripDOIPrefix removes a leading "https://doi.org/" if present.
func stripDOIPrefix(doi string) string {
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	return doi
}

// normalizeDOI lowercases and trims a DOI so equality comparisons are
// case-insensitive.
func normalizeDOI(doi string) string {
	return strings.ToLower(strings.TrimSpace(stripDOIPrefix(doi)))
}

// stripORCIDPrefix removes a leading "https://orcid.org/" if present.
func stripORCIDPrefix(orcid string) string {
	orcid = strings.TrimPrefix(orcid, "https://orcid.org/")
	orcid = strings.TrimPrefix(orcid, "http://orcid.org/")
	return orcid
}

// extractArxivID pulls a bare arXiv identifier out of a larger string
// (an "id" URL, a raw id with version suffix, etc.), trying the new
// numeric style first and falling back to the old archive/number style.
// Any version suffix (vN) is dropped.
func extractArxivID(s string) string {
	if m := arxivNewRe.FindString(s); m != "" {
		return stripArxivVersion(m)
	}
	if m := arxivOldRe.FindString(s); m != "" {
		return stripArxivVersion(m)
	}
	return ""
}

func stripArxivVersion(id string) string {
	if idx := strings.LastIndex(id, "v"); idx > 0 {
		if _, ok := atoiDigits(id[idx+1:]); ok {
			return id[:idx]
		}
	}
	return id
}

func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// capKeywords truncates a keyword slice to the first n entries.
func capKeywords(kws []string, n int) []string {
	if len(kws) <= n {
		return kws
	}
	return kws[:n]
}

// first returns the first element of ss, or "" if empty.
func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
