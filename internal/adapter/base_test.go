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

// BASE emits the same field as a scalar or a list depending on
// cardinality; the fixture deliberately mixes both shapes.
const baseFixture = `{
  "response": {
    "docs": [
      {
        "dcdocid": "ftubbiepub:oai:x:1",
        "dctitle": "A Grey Literature Study",
        "dcauthor": ["Jane Roe", "John Doe"],
        "dcyear": "2019",
        "dcdescription": "An   institutional  repository record.",
        "dcsubject": ["repositories", "metadata"],
        "dcidentifier": ["urn:nbn:de:x-1", "http://dx.doi.org/10.5678/Zenodo.123"],
        "dclink": ["https://example.org/record/1", "https://example.org/record/1/file.pdf"],
        "dcsource": "Journal of Repository Studies",
        "dcoa": "1"
      },
      {
        "dcdocid": "ftubbiepub:oai:x:2",
        "dctitle": ["Scalar Or List Title"],
        "dcauthor": "Solo Author",
        "dcyear": "c. 2005",
        "dcidentifier": "no doi here",
        "dcoa": "2"
      }
    ]
  }
}`

func withBaseFixture(t *testing.T, body string) func() {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	orig := baseSearchAPI
	baseSearchAPI = srv.URL
	return func() {
		srv.Close()
		baseSearchAPI = orig
	}
}

func TestBaseBackend_Search_ShapeCoercion(t *testing.T) {
	cleanup := withBaseFixture(t, baseFixture)
	defer cleanup()

	b := NewBaseBackend("litfed-test/1.0")
	papers, err := b.Search(context.Background(), "grey literature", 10)

	require.NoError(t, err)
	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, "base_ftubbiepub:oai:x:1", first.ID)
	assert.Equal(t, "A Grey Literature Study", first.Title)
	assert.Len(t, first.Authors, 2)
	require.NotNil(t, first.Year)
	assert.Equal(t, 2019, *first.Year)
	assert.Equal(t, "An institutional repository record.", first.Abstract)
	assert.Equal(t, types.AccessOpen, first.AccessType)
	assert.Equal(t, "https://example.org/record/1/file.pdf", first.PDFURL)
	assert.Equal(t, "Journal of Repository Studies", first.Journal)

	// Second doc: list title coerced to scalar, scalar author to list.
	second := papers[1]
	assert.Equal(t, "Scalar Or List Title", second.Title)
	require.Len(t, second.Authors, 1)
	assert.Equal(t, "Solo Author", second.Authors[0].Name)
	require.NotNil(t, second.Year)
	assert.Equal(t, 2005, *second.Year) // scavenged from "c. 2005"
	assert.Equal(t, types.AccessUnknown, second.AccessType)
}

// The DOI is scavenged from whichever dcidentifier value contains "10."
// and normalized for case-insensitive equality.
func TestBaseBackend_DOIScavenging(t *testing.T) {
	cleanup := withBaseFixture(t, baseFixture)
	defer cleanup()

	b := NewBaseBackend("litfed-test/1.0")
	papers, err := b.Search(context.Background(), "grey literature", 10)

	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "10.5678/zenodo.123", papers[0].DOI)
	assert.Empty(t, papers[1].DOI)
}

func TestBaseBackend_HitsCappedAt125(t *testing.T) {
	var gotHits string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHits = r.URL.Query().Get("hits")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":{"docs":[]}}`)
	}))
	defer srv.Close()
	orig := baseSearchAPI
	baseSearchAPI = srv.URL
	defer func() { baseSearchAPI = orig }()

	b := NewBaseBackend("litfed-test/1.0")
	_, err := b.Search(context.Background(), "anything", 5000)

	require.NoError(t, err)
	assert.Equal(t, "125", gotHits)
}

func TestBaseBackend_GetByID_AlwaysNil(t *testing.T) {
	b := NewBaseBackend("litfed-test/1.0")
	p, err := b.GetByID(context.Background(), "base_whatever")
	require.NoError(t, err)
	assert.Nil(t, p)
}
