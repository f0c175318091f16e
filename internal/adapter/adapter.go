// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package adapter implements one translator per bibliographic source,
// each mapping that source's response shape onto the normalized Paper
// model. Every adapter is stateless beyond its configuration and HTTP
// client.
package adapter

import (
	"context"

	"github.com/pdiddy/litfed/pkg/types"
)

// Backend is the mandatory adapter contract. Search paginates internally
// up to maxResults; GetByID resolves one record by its (possibly
// prefixed) id.
type Backend interface {
	// Name is the adapter's display name, used in Paper.Source and
	// Paper.SourcesFoundIn.
	Name() string

	// Search queries the source for query, returning up to maxResults
	// papers. An empty/whitespace query is an immediate error. Partial
	// success (some pages fetched before a later page failed) is
	// returned without error; a failure on the first page propagates.
	Search(ctx context.Context, query string, maxResults int) ([]types.Paper, error)

	// GetByID resolves a single paper. The adapter's id prefix (e.g.
	// "pubmed_") is stripped internally if present. Returns (nil, nil)
	// when the source has no record for id and that is not an error
	// condition for this source (e.g. BASE never supports lookup).
	GetByID(ctx context.Context, id string) (*types.Paper, error)
}

// CitationSource is an optional capability: only adapters that expose a
// citation graph (Semantic Scholar) implement it. The orchestrator's
// citation-expansion phase type-asserts for this interface.
type CitationSource interface {
	GetCitations(ctx context.Context, p types.Paper) ([]types.Paper, error)
	GetReferences(ctx context.Context, p types.Paper) ([]types.Paper, error)
}

// Rates are the documented per-source requests/sec, used as the
// default bucket size; the _keyed entries apply when an API key is
// supplied.
var Rates = map[string]float64{
	"pubmed":                 3,
	"pubmed_keyed":           10,
	"semantic_scholar":       0.33,
	"semantic_scholar_keyed": 1,
	"openalex":               10,
	"arxiv":                  1,
	"crossref":               50,
	"core":                   10,
	"base":                   1,
	"europe_pmc":             10,
	"unpaywall":              10,
}
