// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfed/pkg/types"
)

const coreFixture = `{
  "results": [
    {
      "id": 42,
      "title": "An Aggregated Work",
      "abstract": "Aggregator abstract.",
      "yearPublished": 2016,
      "doi": "10.9999/CORE.42",
      "downloadUrl": "https://core.ac.uk/download/42.pdf",
      "publisher": "Repository Press",
      "documentType": "research",
      "fieldOfStudy": ["computer science"],
      "authors": [{"name": "Ada Lovelace"}]
    },
    {
      "id": 43,
      "title": "A Thesis Without Download",
      "yearPublished": 2012,
      "documentType": "thesis"
    }
  ]
}`

func withCoreFixture(t *testing.T, handler http.HandlerFunc) func() {
	t.Helper()
	srv := httptest.NewServer(handler)
	orig := coreAPIBase
	coreAPIBase = srv.URL
	return func() {
		srv.Close()
		coreAPIBase = orig
	}
}

func TestCoreBackend_Search_ParsesWorks(t *testing.T) {
	var gotAuth string
	cleanup := withCoreFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, coreFixture)
	})
	defer cleanup()

	b := NewCoreBackend("litfed-test/1.0", "ck_test")
	papers, err := b.Search(context.Background(), "aggregated", 10)

	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "Bearer ck_test", gotAuth)

	first := papers[0]
	assert.Equal(t, "core_42", first.ID)
	assert.Equal(t, "10.9999/core.42", first.DOI)
	assert.Equal(t, types.SourcePeerReviewed, first.SourceType)
	// downloadUrl present -> Open.
	assert.Equal(t, types.AccessOpen, first.AccessType)
	assert.Equal(t, "https://core.ac.uk/download/42.pdf", first.PDFURL)

	second := papers[1]
	assert.Equal(t, types.SourceThesis, second.SourceType)
	// No downloadUrl -> Unknown, not Paywalled.
	assert.Equal(t, types.AccessUnknown, second.AccessType)
}

// Without an API key CORE is silently skipped rather than erroring, so
// the orchestrator counts it as a zero-yield source.
func TestCoreBackend_Search_NoKeyReturnsEmpty(t *testing.T) {
	b := NewCoreBackend("litfed-test/1.0", "")
	papers, err := b.Search(context.Background(), "anything", 10)

	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestCoreBackend_GetByID_FetchesWork(t *testing.T) {
	var gotPath, gotAuth string
	cleanup := withCoreFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":42,"title":"An Aggregated Work","yearPublished":2016,"documentType":"research"}`)
	})
	defer cleanup()

	b := NewCoreBackend("litfed-test/1.0", "ck_test")
	p, err := b.GetByID(context.Background(), "core_42")

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "/works/42", gotPath)
	assert.Equal(t, "Bearer ck_test", gotAuth)
	assert.Equal(t, "core_42", p.ID)
	assert.Equal(t, types.SourcePeerReviewed, p.SourceType)
}

func TestCoreBackend_GetByID_EmptyIDErrors(t *testing.T) {
	b := NewCoreBackend("litfed-test/1.0", "ck_test")
	_, err := b.GetByID(context.Background(), "core_")
	require.Error(t, err)
}

func TestCoreBackend_Search_EmptyQueryErrors(t *testing.T) {
	b := NewCoreBackend("litfed-test/1.0", "ck_test")
	_, err := b.Search(context.Background(), " ", 10)
	require.Error(t, err)
}
