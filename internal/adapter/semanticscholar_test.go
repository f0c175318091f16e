// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litfed/internal/ratelimit"
	"github.com/pdiddy/litfed/pkg/types"
)

// newTestSemanticBackend swaps the keyless 0.33 req/s bucket for a fast
// one so tests don't sleep between requests.
func newTestSemanticBackend(apiKey string) *SemanticScholarBackend {
	b := NewSemanticScholarBackend("litfed-test/1.0", apiKey)
	b.Client.Limiter = ratelimit.New(1000)
	return b
}

const semanticSearchFixture = `{
  "total": 1,
  "data": [{
    "paperId": "abc123",
    "title": "Attention Is All You Need",
    "abstract": "The dominant sequence transduction models...",
    "year": 2017,
    "citationCount": 90000,
    "referenceCount": 40,
    "authors": [{"name": "Ashish Vaswani"}],
    "venue": "NeurIPS",
    "publicationVenue": {"name": "Neural Information Processing Systems"},
    "externalIds": {"DOI": "10.48550/ARXIV.1706.03762", "ArXiv": "1706.03762"},
    "openAccessPdf": {"url": "https://example.com/attention.pdf"},
    "fieldsOfStudy": ["Computer Science"],
    "publicationTypes": ["JournalArticle"],
    "isOpenAccess": true
  }]
}`

func withSemanticFixture(t *testing.T, handler http.HandlerFunc) func() {
	t.Helper()
	srv := httptest.NewServer(handler)
	orig := semanticScholarBase
	semanticScholarBase = srv.URL
	return func() {
		srv.Close()
		semanticScholarBase = orig
	}
}

func TestSemanticScholarBackend_Search_ParsesPaper(t *testing.T) {
	var capturedFields string
	cleanup := withSemanticFixture(t, func(w http.ResponseWriter, r *http.Request) {
		capturedFields = r.URL.Query().Get("fields")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, semanticSearchFixture)
	})
	defer cleanup()

	b := newTestSemanticBackend("")
	papers, err := b.Search(context.Background(), "attention", 10)

	require.NoError(t, err)
	require.Len(t, papers, 1)
	p := papers[0]

	assert.Equal(t, "s2_abc123", p.ID)
	assert.Equal(t, "10.48550/arxiv.1706.03762", p.DOI)
	assert.Equal(t, "1706.03762", p.ArxivID)
	assert.Equal(t, "Neural Information Processing Systems", p.Journal)
	assert.Equal(t, 90000, p.CitationCount)
	assert.Equal(t, 40, p.ReferenceCount)
	assert.Equal(t, types.AccessOpen, p.AccessType)
	assert.Equal(t, "https://example.com/attention.pdf", p.PDFURL)

	// The fields selector must request everything the parser reads.
	for _, f := range []string{"externalIds", "openAccessPdf", "citationCount", "publicationTypes", "publicationVenue"} {
		assert.Contains(t, capturedFields, f)
	}
}

func TestSemanticScholarBackend_SourceTypeClassification(t *testing.T) {
	tests := []struct {
		name     string
		pubTypes string
		arxivID  string
		want     types.SourceType
	}{
		{"preprint by type", `["Preprint"]`, "", types.SourcePreprint},
		{"preprint by arxiv id", `["JournalArticle"]`, "1706.03762", types.SourcePreprint},
		{"conference", `["Conference"]`, "", types.SourceConference},
		{"default peer-reviewed", `["JournalArticle"]`, "", types.SourcePeerReviewed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"data":[{"paperId":"p1","title":"T","publicationTypes":%s,"externalIds":{"ArXiv":%q}}]}`,
				tt.pubTypes, tt.arxivID)
			cleanup := withSemanticFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, body)
			})
			defer cleanup()

			b := newTestSemanticBackend("")
			papers, err := b.Search(context.Background(), "t", 5)

			require.NoError(t, err)
			require.Len(t, papers, 1)
			assert.Equal(t, tt.want, papers[0].SourceType)
		})
	}
}

func TestSemanticScholarBackend_APIKeyHeader(t *testing.T) {
	var gotKey string
	cleanup := withSemanticFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[]}`)
	})
	defer cleanup()

	b := newTestSemanticBackend("sk_test")
	_, err := b.Search(context.Background(), "anything", 5)

	require.NoError(t, err)
	assert.Equal(t, "sk_test", gotKey)
}

func TestSemanticScholarBackend_GetCitations_UnwrapsCitingPaper(t *testing.T) {
	cleanup := withSemanticFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/citations") {
			fmt.Fprint(w, `{"data":[{"citingPaper":{"paperId":"c1","title":"Citing Work","year":2020,"citationCount":3}}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	})
	defer cleanup()

	b := newTestSemanticBackend("")
	citations, err := b.GetCitations(context.Background(), types.Paper{ID: "s2_abc123"})

	require.NoError(t, err)
	require.Len(t, citations, 1)
	assert.Equal(t, "s2_c1", citations[0].ID)
	assert.Equal(t, "Citing Work", citations[0].Title)
	assert.Equal(t, 3, citations[0].CitationCount)
}

func TestSemanticScholarBackend_GetCitations_NonS2IDWithoutDOI(t *testing.T) {
	b := newTestSemanticBackend("")
	citations, err := b.GetCitations(context.Background(), types.Paper{ID: "base_99"})

	require.NoError(t, err)
	assert.Empty(t, citations)
}

// Partial success: a failure on page 2 returns page 1's papers without error.
func TestSemanticScholarBackend_Search_PartialSuccess(t *testing.T) {
	calls := 0
	cleanup := withSemanticFixture(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		// Exactly the requested page size, so the pager asks for more.
		var rows []string
		for i := 0; i < 100; i++ {
			rows = append(rows, fmt.Sprintf(`{"paperId":"p%d","title":"T%d"}`, i, i))
		}
		fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(rows, ","))
	})
	defer cleanup()

	b := newTestSemanticBackend("")
	papers, err := b.Search(context.Background(), "t", 150)

	require.NoError(t, err)
	assert.Len(t, papers, 100)
	assert.Equal(t, 2, calls)
}
