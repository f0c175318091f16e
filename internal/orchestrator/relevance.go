// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"math"

	"github.com/pdiddy/litfed/pkg/types"
)

// scoreRelevance computes Paper.RelevanceScore: a
// weighted blend of title/abstract term overlap with the query,
// citation volume, reliability, recency, and an open-access bonus.
// queryTerms is the normalized, deduplicated term set of the query,
// shared across every paper in one search so it is computed once.
func scoreRelevance(p *types.Paper, queryTerms map[string]bool, currentYear int) {
	denom := len(queryTerms)
	if denom == 0 {
		denom = 1
	}

	titleTerms := normalizeTerms(p.Title)
	titleOverlap := 0
	for t := range queryTerms {
		if titleTerms[t] {
			titleOverlap++
		}
	}
	titleScore := float64(titleOverlap) / float64(denom) * 30

	abstractTerms := normalizeTerms(p.Abstract)
	abstractOverlap := 0
	for t := range queryTerms {
		if abstractTerms[t] {
			abstractOverlap++
		}
	}
	abstractScore := math.Min(15, float64(abstractOverlap)*3)

	citationScore := 0.0
	if p.CitationCount > 0 {
		citationScore = math.Min(20, math.Log10(float64(p.CitationCount)+1)*5)
	}

	reliabilityScore := p.Reliability.Total() * 20

	recencyScore := 0.0
	if p.Year != nil {
		age := currentYear - *p.Year
		switch {
		case age <= 2:
			recencyScore = 10
		case age <= 5:
			recencyScore = 7
		case age <= 10:
			recencyScore = 4
		default:
			recencyScore = 1
		}
	}

	openBonus := 0.0
	if p.AccessType == types.AccessOpen {
		openBonus = 5
	}

	p.RelevanceScore = titleScore + abstractScore + citationScore + reliabilityScore + recencyScore + openBonus
}
