// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfed/pkg/types"
)

func TestQueryFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")

	year := 2020
	cfg := types.DefaultSearchConfig()
	cfg.MaxPerSource = 25
	cfg.YearStart = &year

	result := &types.SearchResult{
		Query:             "token bucket rate limiting",
		TotalFound:        1,
		SourcesSearched:   []string{"arxiv", "crossref"},
		DuplicatesRemoved: 3,
		Papers: []types.Paper{{
			ID:             "arxiv_2301.01234",
			Title:          "A Paper",
			ArxivID:        "2301.01234",
			AccessType:     types.AccessOpen,
			SourceType:     types.SourcePreprint,
			SourcesFoundIn: []string{"arxiv"},
			RelevanceScore: 42.5,
		}},
	}

	require.NoError(t, WriteQueryFile(path, result.Query, cfg, result))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)

	assert.Equal(t, "token bucket rate limiting", qf.Query)
	assert.Equal(t, 25, qf.Config.MaxPerSource)
	require.NotNil(t, qf.Config.YearStart)
	assert.Equal(t, 2020, *qf.Config.YearStart)
	assert.False(t, qf.SavedAt.IsZero())

	require.Len(t, qf.Result.Papers, 1)
	p := qf.Result.Papers[0]
	assert.Equal(t, "arxiv_2301.01234", p.ID)
	assert.Equal(t, types.AccessOpen, p.AccessType)
	assert.Equal(t, 42.5, p.RelevanceScore)
	assert.Equal(t, []string{"arxiv", "crossref"}, qf.Result.SourcesSearched)
}

func TestReadQueryFile_MissingFileErrors(t *testing.T) {
	_, err := ReadQueryFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
