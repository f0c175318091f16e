// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reliability implements the multi-factor reliability rubric
// applied to every Paper after deduplication: peer-review status,
// venue reputation, citation volume, cross-source verification, and
// recency, each contributing a capped component.
package reliability

import (
	"strings"

	"github.com/pdiddy/litfed/pkg/types"
)

// highImpactJournals lists venues that earn the top journal-reputation tier.
var highImpactJournals = map[string]bool{
	"nature":                 true,
	"science":                true,
	"cell":                   true,
	"the lancet":             true,
	"new england journal of medicine": true,
	"jama":                   true,
	"bmj":                    true,
	"nature medicine":        true,
	"nature genetics":        true,
	"nature biotechnology":   true,
	"nature communications":  true,
	"proceedings of the national academy of sciences": true,
	"physical review letters":        true,
	"journal of the american chemical society": true,
	"angewandte chemie":      true,
	"chemical reviews":       true,
	"chemical society reviews": true,
	"neuron":                 true,
	"immunity":               true,
	"molecular cell":         true,
}

// reputablePublishers lists publishers that earn the mid journal-reputation tier.
var reputablePublishers = map[string]bool{
	"nature publishing group":     true,
	"springer":                    true,
	"elsevier":                    true,
	"wiley":                       true,
	"cell press":                  true,
	"american chemical society":   true,
	"royal society of chemistry":  true,
	"ieee":                        true,
	"american physical society":   true,
	"oxford university press":     true,
	"cambridge university press":  true,
	"plos":                        true,
	"frontiers":                   true,
	"bmc":                         true,
}

// Context carries the inputs Calculate needs beyond the Paper itself:
// the current year (so callers don't depend on time.Now inside a pure
// function) and whether the paper is known to be retracted.
type Context struct {
	CurrentYear int
	IsRetracted bool
}

// Calculate computes the ReliabilityScore for a paper. sourcesFound is
// the number of adapters the paper was found in (post-dedup); it must be
// supplied by the caller rather than read off the paper so that the
// orchestrator can re-score using the post-merge count.
func Calculate(p types.Paper, sourcesFound int, ctx Context) types.ReliabilityScore {
	if ctx.IsRetracted {
		return types.ReliabilityScore{IsRetracted: true}
	}

	score := types.ReliabilityScore{
		PeerReview:   peerReviewScore(p.SourceType),
		Journal:      journalScore(p.Journal, p.Publisher),
		Citations:    citationScore(p.CitationCount),
		Verification: verificationScore(sourcesFound),
		Recency:      recencyScore(p.Year, ctx.CurrentYear),
	}
	return score
}

func peerReviewScore(st types.SourceType) float64 {
	switch st {
	case types.SourcePeerReviewed:
		return 0.30
	case types.SourcePreprint:
		return 0.10
	case types.SourceConference:
		return 0.20
	default:
		return 0.05
	}
}

func journalScore(journal, publisher string) float64 {
	if journal == "" {
		return 0.0
	}
	jl := strings.ToLower(journal)
	for name := range highImpactJournals {
		if strings.Contains(jl, name) {
			return 0.20
		}
	}
	if reputablePublishers[strings.ToLower(publisher)] {
		return 0.15
	}
	return 0.10
}

func citationScore(count int) float64 {
	switch {
	case count >= 500:
		return 0.20
	case count >= 100:
		return 0.15
	case count >= 25:
		return 0.10
	case count >= 5:
		return 0.05
	case count >= 1:
		return 0.02
	default:
		return 0.0
	}
}

func verificationScore(sourcesFound int) float64 {
	switch {
	case sourcesFound >= 5:
		return 0.20
	case sourcesFound >= 3:
		return 0.15
	case sourcesFound >= 2:
		return 0.10
	default:
		return 0.05
	}
}

func recencyScore(year *int, currentYear int) float64 {
	if year == nil {
		return 0.0
	}
	age := currentYear - *year
	switch {
	case age <= 2:
		return 0.10
	case age <= 5:
		return 0.07
	case age <= 10:
		return 0.04
	default:
		return 0.02
	}
}
