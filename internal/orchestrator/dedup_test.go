// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfed/pkg/types"
)

func TestDedupe_ByDOI_CaseInsensitive(t *testing.T) {
	a := types.Paper{ID: "a_1", DOI: "10.1/Abc", CitationCount: 5, SourcesFoundIn: []string{"a"}}
	b := types.Paper{ID: "b_1", DOI: "10.1/abc", CitationCount: 42, SourcesFoundIn: []string{"b"}}

	unique, removed := dedupe([]types.Paper{a, b})

	require.Len(t, unique, 1)
	assert.Equal(t, 1, removed)
	assert.ElementsMatch(t, []string{"a", "b"}, unique[0].SourcesFoundIn)
	assert.Equal(t, 42, unique[0].CitationCount)
}

func TestDedupe_Idempotent(t *testing.T) {
	papers := []types.Paper{
		{ID: "a_1", DOI: "10.1/x", SourcesFoundIn: []string{"a"}},
		{ID: "b_1", DOI: "10.1/x", SourcesFoundIn: []string{"b"}},
		{ID: "c_1", Title: "Unrelated Paper", SourcesFoundIn: []string{"c"}},
	}
	once, _ := dedupe(papers)
	twice, _ := dedupe(once)
	assert.Equal(t, once, twice)
}

func TestDedupe_TitleMatchOnlyWhenNoIdentifierHits(t *testing.T) {
	// Same normalized title, different DOIs: identifier disagreement wins,
	// so these must NOT be merged.
	a := types.Paper{ID: "a_1", DOI: "10.1/one", Title: "Attention Is All You Need", SourcesFoundIn: []string{"a"}}
	b := types.Paper{ID: "b_1", DOI: "10.1/two", Title: "Attention Is All You Need", SourcesFoundIn: []string{"b"}}

	unique, removed := dedupe([]types.Paper{a, b})

	assert.Len(t, unique, 2)
	assert.Equal(t, 0, removed)
}

func TestDedupe_CrossKey_ArxivThenTitle(t *testing.T) {
	// Two mock adapters return the same paper under different ids — one
	// with a DOI, one with only an arXiv id but a matching normalized
	// title. The survivor carries both adapter names.
	withDOI := types.Paper{ID: "s2_1", DOI: "10.48550/arxiv.1706.03762", Title: "Attention Is All You Need", SourcesFoundIn: []string{"semantic_scholar"}}
	withArxiv := types.Paper{ID: "arxiv_1706.03762", ArxivID: "1706.03762", Title: "Attention is all you need", SourcesFoundIn: []string{"arxiv"}}

	unique, removed := dedupe([]types.Paper{withDOI, withArxiv})

	require.Len(t, unique, 1)
	assert.Equal(t, 1, removed)
	assert.ElementsMatch(t, []string{"semantic_scholar", "arxiv"}, unique[0].SourcesFoundIn)
	assert.GreaterOrEqual(t, len(unique[0].SourcesFoundIn), 2)
}

func TestMergeInto_AccessMonotonicity(t *testing.T) {
	dst := types.Paper{AccessType: types.AccessPaywalled}
	src := types.Paper{AccessType: types.AccessOpen, PDFURL: "https://example.com/p.pdf"}

	mergeInto(&dst, src)

	assert.Equal(t, types.AccessOpen, dst.AccessType)
	assert.Equal(t, "https://example.com/p.pdf", dst.PDFURL)
}

func TestMergeInto_NeverDowngradesAccess(t *testing.T) {
	dst := types.Paper{AccessType: types.AccessOpen, PDFURL: "https://example.com/keep.pdf"}
	src := types.Paper{AccessType: types.AccessPaywalled}

	mergeInto(&dst, src)

	assert.Equal(t, types.AccessOpen, dst.AccessType)
	assert.Equal(t, "https://example.com/keep.pdf", dst.PDFURL)
}

func TestMergeInto_UnionNotReplace(t *testing.T) {
	dst := types.Paper{
		SourcesFoundIn: []string{"a"},
		Keywords:       []string{"x"},
		URLs:           map[string]string{"doi": "https://doi.org/old"},
	}
	src := types.Paper{
		SourcesFoundIn: []string{"b"},
		Keywords:       []string{"x", "y"},
		URLs:           map[string]string{"doi": "https://doi.org/new", "pdf": "https://example.com/p.pdf"},
		PMID:           "12345",
	}

	mergeInto(&dst, src)

	assert.Equal(t, []string{"a", "b"}, dst.SourcesFoundIn)
	assert.Equal(t, []string{"x", "y"}, dst.Keywords)
	assert.Equal(t, "https://doi.org/new", dst.URLs["doi"])
	assert.Equal(t, "https://example.com/p.pdf", dst.URLs["pdf"])
	assert.Equal(t, "12345", dst.PMID)
}
