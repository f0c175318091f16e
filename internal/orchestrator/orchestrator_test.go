// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfed/pkg/types"
)

// mockBackend is a scriptable adapter.Backend used to exercise the
// orchestrator pipeline without network access. It deliberately does not
// implement adapter.CitationSource; tests that need citation expansion
// use mockCitationBackend instead.
type mockBackend struct {
	name    string
	results []types.Paper
	err     error
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]types.Paper, len(m.results))
	copy(out, m.results)
	return out, nil
}

func (m *mockBackend) GetByID(ctx context.Context, id string) (*types.Paper, error) {
	return nil, nil
}

// mockCitationBackend additionally implements adapter.CitationSource,
// standing in for the single citation-capable adapter (Semantic Scholar).
type mockCitationBackend struct {
	mockBackend
	citations  []types.Paper
	references []types.Paper
}

func (m *mockCitationBackend) GetCitations(ctx context.Context, p types.Paper) ([]types.Paper, error) {
	return m.citations, nil
}

func (m *mockCitationBackend) GetReferences(ctx context.Context, p types.Paper) ([]types.Paper, error) {
	return m.references, nil
}

func TestSearch_EmptyQueryFails(t *testing.T) {
	o := New(&mockBackend{name: "a"})
	_, err := o.Search(context.Background(), "   ", types.DefaultSearchConfig(), nil)
	require.Error(t, err)
}

func TestSearch_AdapterFailureIsAbsorbed(t *testing.T) {
	good := &mockBackend{name: "good", results: []types.Paper{{ID: "good_1", Title: "A Paper"}}}
	bad := &mockBackend{name: "bad", err: fmt.Errorf("boom")}
	o := New(good, bad)

	result, err := o.Search(context.Background(), "a paper", types.DefaultSearchConfig(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, result.SourcesSearched)
	assert.Len(t, result.Papers, 1)
}

func TestSearch_DeduplicatesAcrossSources(t *testing.T) {
	// Two sources return the same paper under
	// different identifiers — one with a DOI, one with an arXiv id but a
	// matching normalized title.
	s2 := &mockBackend{
		name: "semantic_scholar",
		results: []types.Paper{{
			ID: "s2_1", DOI: "10.48550/arxiv.1706.03762", Title: "Attention Is All You Need",
			CitationCount: 10, SourceType: types.SourcePeerReviewed,
		}},
	}
	arxiv := &mockBackend{
		name: "arxiv",
		results: []types.Paper{{
			ID: "arxiv_1", ArxivID: "1706.03762", Title: "Attention is all you need",
			CitationCount: 5, SourceType: types.SourcePreprint, AccessType: types.AccessOpen,
		}},
	}
	cfg := types.DefaultSearchConfig()
	cfg.ExpandCitations = false
	o := New(s2, arxiv)

	result, err := o.Search(context.Background(), "attention is all you need", cfg, nil)

	require.NoError(t, err)
	require.Len(t, result.Papers, 1)
	p := result.Papers[0]
	assert.ElementsMatch(t, []string{"semantic_scholar", "arxiv"}, p.SourcesFoundIn)
	assert.Equal(t, 1, result.DuplicatesRemoved)
	assert.Equal(t, 10, p.CitationCount) // max of the two
	assert.Equal(t, types.AccessOpen, p.AccessType)
	assert.GreaterOrEqual(t, p.Reliability.Verification, 0.10) // >=2 sources tier
}

func TestSearch_CitationExpansionAddsAndCaps(t *testing.T) {
	cited := types.Paper{ID: "arxiv_1", Title: "Seed Paper", CitationCount: 100}
	var citations []types.Paper
	for i := 0; i < 10; i++ {
		citations = append(citations, types.Paper{ID: fmt.Sprintf("s2_c%d", i), Title: fmt.Sprintf("Citing Paper %d", i)})
	}
	seed := &mockBackend{name: "arxiv", results: []types.Paper{cited}}
	s2 := &mockCitationBackend{mockBackend: mockBackend{name: "semantic_scholar"}, citations: citations}

	cfg := types.DefaultSearchConfig()
	cfg.ExpandCitations = true
	o := New(seed, s2)

	result, err := o.Search(context.Background(), "seed paper", cfg, nil)

	require.NoError(t, err)
	// seed paper + up to 5 kept citations (references empty).
	assert.Equal(t, 6, len(result.Papers))
}

func TestSearch_FiltersYearRangeDropsUndated(t *testing.T) {
	y2020 := 2020
	dated := types.Paper{ID: "a_1", Title: "Dated Paper", Year: &y2020}
	undated := types.Paper{ID: "a_2", Title: "Undated Paper"}
	a := &mockBackend{name: "a", results: []types.Paper{dated, undated}}

	cfg := types.DefaultSearchConfig()
	cfg.ExpandCitations = false
	start := 2015
	cfg.YearStart = &start
	o := New(a)

	result, err := o.Search(context.Background(), "paper", cfg, nil)

	require.NoError(t, err)
	require.Len(t, result.Papers, 1)
	assert.Equal(t, "a_1", result.Papers[0].ID)
}

func TestSearch_FiltersExcludePreprints(t *testing.T) {
	preprint := types.Paper{ID: "arxiv_1", Title: "Preprint Paper", SourceType: types.SourcePreprint}
	reviewed := types.Paper{ID: "pubmed_1", Title: "Reviewed Paper", SourceType: types.SourcePeerReviewed}
	a := &mockBackend{name: "a", results: []types.Paper{preprint, reviewed}}

	cfg := types.DefaultSearchConfig()
	cfg.ExpandCitations = false
	cfg.IncludePreprints = false
	o := New(a)

	result, err := o.Search(context.Background(), "paper", cfg, nil)

	require.NoError(t, err)
	require.Len(t, result.Papers, 1)
	assert.Equal(t, "pubmed_1", result.Papers[0].ID)
}

func TestSearch_RankingNonIncreasing(t *testing.T) {
	a := &mockBackend{name: "a", results: []types.Paper{
		{ID: "a_1", Title: "Completely Unrelated"},
		{ID: "a_2", Title: "Attention Is All You Need", CitationCount: 500},
		{ID: "a_3", Title: "Attention Mechanisms in Transformers"},
	}}
	cfg := types.DefaultSearchConfig()
	cfg.ExpandCitations = false
	o := New(a)

	result, err := o.Search(context.Background(), "attention is all you need", cfg, nil)

	require.NoError(t, err)
	for i := 1; i < len(result.Papers); i++ {
		assert.GreaterOrEqual(t, result.Papers[i-1].RelevanceScore, result.Papers[i].RelevanceScore)
	}
}

func TestSearch_StatsInvariants(t *testing.T) {
	y2024 := 2024
	y2010 := 2010
	a := &mockBackend{name: "a", results: []types.Paper{
		{ID: "a_1", Title: "One", Year: &y2024, AccessType: types.AccessOpen, SourceType: types.SourcePeerReviewed},
		{ID: "a_2", Title: "Two", Year: &y2010, AccessType: types.AccessPaywalled, SourceType: types.SourcePeerReviewed},
	}}
	cfg := types.DefaultSearchConfig()
	cfg.ExpandCitations = false
	o := New(a)

	result, err := o.Search(context.Background(), "paper", cfg, nil)

	require.NoError(t, err)
	assert.Equal(t, result.TotalFound, result.Reliability.High+result.Reliability.Medium+result.Reliability.Low)
	assert.LessOrEqual(t, result.Access.Open+result.Access.Paywalled, result.TotalFound)
	require.NotNil(t, result.Timeline.Earliest)
	require.NotNil(t, result.Timeline.Latest)
	assert.Equal(t, 2010, *result.Timeline.Earliest)
	assert.Equal(t, 2024, *result.Timeline.Latest)
}

func TestSearch_ProgressEventsEmitted(t *testing.T) {
	a := &mockBackend{name: "a", results: []types.Paper{{ID: "a_1", Title: "One"}}}
	cfg := types.DefaultSearchConfig()
	cfg.ExpandCitations = false
	o := New(a)

	progress := make(chan types.ProgressEvent, 64)
	_, err := o.Search(context.Background(), "paper", cfg, progress)
	close(progress)
	require.NoError(t, err)

	var phases []string
	for ev := range progress {
		phases = append(phases, ev.Phase)
	}
	assert.Contains(t, phases, types.PhaseSearch)
	assert.Contains(t, phases, types.PhaseProcess)
	assert.Contains(t, phases, types.PhaseComplete)
}
