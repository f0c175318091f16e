// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator implements the fan-out/aggregate/rank pipeline:
// it queries every registered adapter, expands citation edges for the
// most-cited records, deduplicates and merges cross-source duplicates,
// re-scores reliability with the final cross-source evidence, ranks by
// a blended relevance function, and applies post-rank filters.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/pdiddy/litfed/internal/adapter"
	"github.com/pdiddy/litfed/internal/reliability"
	"github.com/pdiddy/litfed/pkg/types"
)

const (
	citationExpansionTopN = 20
	citationKeepEach      = 5
)

// Orchestrator holds no per-search state beyond its adapter registry;
// Search allocates its own aggregate list and dedup maps per call, so
// one Orchestrator is safe to reuse (and to call concurrently) across
// searches. All per-search state is local to one invocation.
type Orchestrator struct {
	adapters []adapter.Backend

	citationAdapter     adapter.CitationSource
	citationAdapterName string

	now func() time.Time
}

// New builds an Orchestrator over adapters, registered in the order
// their results are aggregated once all have returned, so merge
// outcomes are deterministic regardless of goroutine scheduling.
// The first adapter that also implements adapter.CitationSource becomes
// the phase-2 citation-expansion source.
func New(adapters ...adapter.Backend) *Orchestrator {
	o := &Orchestrator{adapters: adapters, now: time.Now}
	for _, a := range adapters {
		if cs, ok := a.(adapter.CitationSource); ok {
			o.citationAdapter = cs
			o.citationAdapterName = a.Name()
			break
		}
	}
	return o
}

// Search runs the full pipeline for query and returns the ranked,
// filtered result. progress may be nil; when non-nil it must be drained
// concurrently with Search (phase and per-adapter lifecycle events are
// sent synchronously and will block the pipeline on a full channel).
func (o *Orchestrator) Search(ctx context.Context, query string, cfg types.SearchConfig, progress chan<- types.ProgressEvent) (*types.SearchResult, error) {
	start := o.now()
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if cfg.MaxPerSource <= 0 {
		cfg.MaxPerSource = types.DefaultSearchConfig().MaxPerSource
	}

	emit(progress, types.ProgressEvent{Phase: types.PhaseSearch, Status: types.StatusRunning})
	papers, sourcesSearched := o.fanOut(ctx, query, cfg.MaxPerSource, progress)
	emit(progress, types.ProgressEvent{Phase: types.PhaseSearch, Status: types.StatusComplete, Count: len(papers)})

	if cfg.ExpandCitations {
		emit(progress, types.ProgressEvent{Phase: types.PhaseCitations, Status: types.StatusRunning})
		papers = append(papers, o.expandCitations(ctx, papers)...)
		emit(progress, types.ProgressEvent{Phase: types.PhaseCitations, Status: types.StatusComplete, Count: len(papers)})
	}

	emit(progress, types.ProgressEvent{Phase: types.PhaseProcess, Status: types.StatusRunning})

	unique, duplicatesRemoved := dedupe(papers)

	currentYear := o.now().Year()
	for i := range unique {
		prior := unique[i].Reliability
		rescored := reliability.Calculate(unique[i], len(unique[i].SourcesFoundIn), reliability.Context{
			CurrentYear: currentYear,
			IsRetracted: prior.IsRetracted,
		})
		rescored.Contradictions = prior.Contradictions
		unique[i].Reliability = rescored
	}

	queryTerms := normalizeTerms(query)
	for i := range unique {
		scoreRelevance(&unique[i], queryTerms, currentYear)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].RelevanceScore > unique[j].RelevanceScore
	})

	filtered := applyFilters(unique, cfg)
	emit(progress, types.ProgressEvent{Phase: types.PhaseProcess, Status: types.StatusComplete, Count: len(filtered)})

	result := &types.SearchResult{
		Query:             query,
		Papers:            filtered,
		TotalFound:        len(filtered),
		SourcesSearched:   sourcesSearched,
		DuplicatesRemoved: duplicatesRemoved,
		SearchTimeSeconds: round2(o.now().Sub(start).Seconds()),
	}
	result.Reliability, result.Access, result.Timeline = aggregateStats(filtered)

	emit(progress, types.ProgressEvent{Phase: types.PhaseComplete, Status: types.StatusComplete, Count: len(filtered)})
	return result, nil
}

// adapterOutcome is one adapter's fan-out result, collected by index so
// aggregation can iterate in stable registration order regardless of
// which goroutine finishes first.
type adapterOutcome struct {
	papers []types.Paper
	err    error
}

func (o *Orchestrator) fanOut(ctx context.Context, query string, maxPerSource int, progress chan<- types.ProgressEvent) ([]types.Paper, []string) {
	outcomes := make([]adapterOutcome, len(o.adapters))

	var wg conc.WaitGroup
	for i, a := range o.adapters {
		i, a := i, a
		wg.Go(func() {
			emit(progress, types.ProgressEvent{Phase: types.PhaseSearch, Source: a.Name(), Status: types.StatusRunning})
			papers, err := a.Search(ctx, query, maxPerSource)
			if err != nil {
				emit(progress, types.ProgressEvent{Phase: types.PhaseSearch, Source: a.Name(), Status: types.StatusError, Message: err.Error()})
				outcomes[i] = adapterOutcome{err: err}
				return
			}
			for j := range papers {
				papers[j].SourcesFoundIn = []string{a.Name()}
				if papers[j].Source == "" {
					papers[j].Source = a.Name()
				}
			}
			emit(progress, types.ProgressEvent{Phase: types.PhaseSearch, Source: a.Name(), Status: types.StatusComplete, Count: len(papers)})
			outcomes[i] = adapterOutcome{papers: papers}
		})
	}
	wg.Wait()

	var all []types.Paper
	var sourcesSearched []string
	for i, a := range o.adapters {
		if outcomes[i].err != nil {
			continue
		}
		sourcesSearched = append(sourcesSearched, a.Name())
		all = append(all, outcomes[i].papers...)
	}
	return all, sourcesSearched
}

// expandCitations implements phase 2: the top 20 records by descending
// citation count (zero-citation papers excluded first) are walked for
// citing and cited papers via the one citation-capable adapter, 5 of
// each kept per record. Failures are absorbed.
func (o *Orchestrator) expandCitations(ctx context.Context, papers []types.Paper) []types.Paper {
	if o.citationAdapter == nil {
		return nil
	}

	candidates := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if p.CitationCount > 0 {
			candidates = append(candidates, p)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CitationCount > candidates[j].CitationCount
	})
	if len(candidates) > citationExpansionTopN {
		candidates = candidates[:citationExpansionTopN]
	}

	var expanded []types.Paper
	for _, p := range candidates {
		if citing, err := o.citationAdapter.GetCitations(ctx, p); err == nil {
			expanded = append(expanded, o.tagExpanded(citing, citationKeepEach)...)
		}
		if refs, err := o.citationAdapter.GetReferences(ctx, p); err == nil {
			expanded = append(expanded, o.tagExpanded(refs, citationKeepEach)...)
		}
	}
	return expanded
}

func (o *Orchestrator) tagExpanded(papers []types.Paper, n int) []types.Paper {
	if len(papers) > n {
		papers = papers[:n]
	}
	for i := range papers {
		if len(papers[i].SourcesFoundIn) == 0 {
			papers[i].SourcesFoundIn = []string{o.citationAdapterName}
		}
	}
	return papers
}

// applyFilters implements phase 6 in the documented order: year range,
// then minReliability, then preprint exclusion.
func applyFilters(papers []types.Paper, cfg types.SearchConfig) []types.Paper {
	out := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if cfg.YearStart != nil || cfg.YearEnd != nil {
			if p.Year == nil {
				continue
			}
			if cfg.YearStart != nil && *p.Year < *cfg.YearStart {
				continue
			}
			if cfg.YearEnd != nil && *p.Year > *cfg.YearEnd {
				continue
			}
		}
		if p.Reliability.Total() < cfg.MinReliability {
			continue
		}
		if !cfg.IncludePreprints && p.SourceType == types.SourcePreprint {
			continue
		}
		out = append(out, p)
	}
	return out
}

// aggregateStats implements phase 7's result-set counts.
func aggregateStats(papers []types.Paper) (types.ReliabilityBand, types.AccessBand, types.Timeline) {
	var rel types.ReliabilityBand
	var acc types.AccessBand
	var earliest, latest *int

	for _, p := range papers {
		switch p.Reliability.Level() {
		case "High":
			rel.High++
		case "Medium":
			rel.Medium++
		default:
			rel.Low++
		}
		switch p.AccessType {
		case types.AccessOpen:
			acc.Open++
		case types.AccessPaywalled:
			acc.Paywalled++
		}
		if p.Year != nil {
			if earliest == nil || *p.Year < *earliest {
				y := *p.Year
				earliest = &y
			}
			if latest == nil || *p.Year > *latest {
				y := *p.Year
				latest = &y
			}
		}
	}
	return rel, acc, types.Timeline{Earliest: earliest, Latest: latest}
}

func emit(progress chan<- types.ProgressEvent, ev types.ProgressEvent) {
	if progress == nil {
		return
	}
	ev.Type = "progress"
	progress <- ev
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
