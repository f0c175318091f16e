// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"strings"

	"github.com/pdiddy/litfed/pkg/types"
)

// dedupe walks papers in arrival order, merging each onto the first
// survivor it matches by a four-key priority lookup:
// DOI, PMID, arXiv id, normalized title. On a miss the record
// is inserted into every applicable key map so later arrivals can match
// it on any of the four keys. A title match is not taken when both
// records carry a DOI, PMID or arXiv id and those identifiers differ.
func dedupe(papers []types.Paper) ([]types.Paper, int) {
	byDOI := map[string]int{}
	byPMID := map[string]int{}
	byArxiv := map[string]int{}
	byTitle := map[string]int{}

	var unique []types.Paper
	removed := 0

	for _, p := range papers {
		doiKey := strings.TrimSpace(strings.ToLower(p.DOI))
		pmidKey := strings.TrimSpace(p.PMID)
		arxivKey := strings.TrimSpace(strings.ToLower(p.ArxivID))
		titleKey := normalizeTitle(p.Title)

		idx, hit := -1, false
		switch {
		case doiKey != "":
			idx, hit = byDOI[doiKey]
		}
		if !hit && pmidKey != "" {
			idx, hit = byPMID[pmidKey]
		}
		if !hit && arxivKey != "" {
			idx, hit = byArxiv[arxivKey]
		}
		if !hit && titleKey != "" {
			if j, ok := byTitle[titleKey]; ok {
				s := unique[j]
				conflict := (doiKey != "" && s.DOI != "" && strings.TrimSpace(strings.ToLower(s.DOI)) != doiKey) ||
					(pmidKey != "" && s.PMID != "" && strings.TrimSpace(s.PMID) != pmidKey) ||
					(arxivKey != "" && s.ArxivID != "" && strings.TrimSpace(strings.ToLower(s.ArxivID)) != arxivKey)
				if !conflict {
					idx, hit = j, true
				}
			}
		}

		if hit {
			mergeInto(&unique[idx], p)
			removed++
			continue
		}

		idx = len(unique)
		unique = append(unique, p)
		if doiKey != "" {
			byDOI[doiKey] = idx
		}
		if pmidKey != "" {
			byPMID[pmidKey] = idx
		}
		if arxivKey != "" {
			byArxiv[arxivKey] = idx
		}
		if titleKey != "" {
			byTitle[titleKey] = idx
		}
	}
	return unique, removed
}

// mergeInto folds src into the canonical survivor dst. dst is never
// replaced wholesale; fields not named below are left untouched
// ("target wins").
func mergeInto(dst *types.Paper, src types.Paper) {
	// (1) sourcesFoundIn: ordered union.
	seen := make(map[string]bool, len(dst.SourcesFoundIn))
	for _, s := range dst.SourcesFoundIn {
		seen[s] = true
	}
	for _, s := range src.SourcesFoundIn {
		if s != "" && !seen[s] {
			dst.SourcesFoundIn = append(dst.SourcesFoundIn, s)
			seen[s] = true
		}
	}

	// (2) citationCount: max.
	if src.CitationCount > dst.CitationCount {
		dst.CitationCount = src.CitationCount
	}
	if src.ReferenceCount > dst.ReferenceCount {
		dst.ReferenceCount = src.ReferenceCount
	}

	// (3) missing identifiers backfilled from source, union not replace.
	if dst.DOI == "" && src.DOI != "" {
		dst.DOI = src.DOI
	}
	if dst.PMID == "" && src.PMID != "" {
		dst.PMID = src.PMID
	}
	if dst.PMCID == "" && src.PMCID != "" {
		dst.PMCID = src.PMCID
	}
	if dst.ArxivID == "" && src.ArxivID != "" {
		dst.ArxivID = src.ArxivID
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if dst.Year == nil && src.Year != nil {
		y := *src.Year
		dst.Year = &y
	}

	// (4) keywords: ordered union, recapped at 10.
	kwSeen := make(map[string]bool, len(dst.Keywords))
	for _, k := range dst.Keywords {
		kwSeen[k] = true
	}
	for _, k := range src.Keywords {
		if k != "" && !kwSeen[k] {
			dst.Keywords = append(dst.Keywords, k)
			kwSeen[k] = true
		}
	}
	if len(dst.Keywords) > 10 {
		dst.Keywords = dst.Keywords[:10]
	}

	// (5) urls: incoming keys overwrite.
	if len(src.URLs) > 0 {
		if dst.URLs == nil {
			dst.URLs = map[string]string{}
		}
		for k, v := range src.URLs {
			dst.URLs[k] = v
		}
	}

	// (6) access is monotone-upgradable only: a source with Open access
	// promotes the survivor, and its pdfUrl is adopted if present.
	// An already-Open survivor is never downgraded.
	if src.AccessType == types.AccessOpen {
		dst.AccessType = types.AccessOpen
		if src.PDFURL != "" {
			dst.PDFURL = src.PDFURL
		}
	}

	// Retraction/contradiction evidence is never dropped on merge: any
	// source flagging a retraction makes the survivor retracted, and
	// contradiction notes accumulate as an ordered union.
	if src.Reliability.IsRetracted {
		dst.Reliability.IsRetracted = true
	}
	ctrSeen := make(map[string]bool, len(dst.Reliability.Contradictions))
	for _, c := range dst.Reliability.Contradictions {
		ctrSeen[c] = true
	}
	for _, c := range src.Reliability.Contradictions {
		if c != "" && !ctrSeen[c] {
			dst.Reliability.Contradictions = append(dst.Reliability.Contradictions, c)
			ctrSeen[c] = true
		}
	}
}
