// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the default User-Agent header; adapters may override
	// it (notably CrossRef's "mailto:" polite-pool identification).
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds the orchestrator's per-search configuration; see
// DefaultSearchConfig for the defaults.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPerSource bounds how many records are fetched from each adapter.
	MaxPerSource int `json:"max_per_source" yaml:"max_per_source"`

	// ExpandCitations enables phase 2 (citation/reference walk).
	ExpandCitations bool `json:"expand_citations" yaml:"expand_citations"`

	// CitationDepth is reserved; current semantics is a single hop.
	CitationDepth int `json:"citation_depth" yaml:"citation_depth"`

	// IncludePreprints, when false, drops Preprint papers post-rank.
	IncludePreprints bool `json:"include_preprints" yaml:"include_preprints"`

	// MinReliability drops papers with reliability.total below this.
	MinReliability float64 `json:"min_reliability" yaml:"min_reliability"`

	// YearStart/YearEnd apply an inclusive year filter; papers with no
	// year are dropped when either bound is set.
	YearStart *int `json:"year_start,omitempty" yaml:"year_start,omitempty"`
	YearEnd   *int `json:"year_end,omitempty" yaml:"year_end,omitempty"`

	// NCBIAPIKey, SemanticScholarAPIKey, COREAPIKey are optional
	// per-source credentials that raise rate limits.
	NCBIAPIKey            string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
	COREAPIKey            string `json:"core_api_key,omitempty" yaml:"core_api_key,omitempty"`

	// Email is sent to CrossRef/OpenAlex/Unpaywall/Europe PMC for
	// polite-pool or contact-identification purposes.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// DefaultSearchConfig returns the default search configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "litfed/0.1",
		},
		MaxPerSource:     100,
		ExpandCitations:  true,
		CitationDepth:    1,
		IncludePreprints: true,
		MinReliability:   0.0,
		Email:            "user@example.com",
	}
}
