// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ReliabilityBand holds result-set counts for a reliability tier grouping.
type ReliabilityBand struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// AccessBand holds result-set counts by access type.
type AccessBand struct {
	Open      int `json:"open" yaml:"open"`
	Paywalled int `json:"paywalled" yaml:"paywalled"`
}

// Timeline holds the earliest/latest publication year seen in a result set.
type Timeline struct {
	Earliest *int `json:"earliest,omitempty" yaml:"earliest,omitempty"`
	Latest   *int `json:"latest,omitempty" yaml:"latest,omitempty"`
}

// SearchResult is the unified, ranked outcome of one orchestrator
// search.
type SearchResult struct {
	Query             string          `json:"query" yaml:"query"`
	Papers            []Paper         `json:"papers" yaml:"papers"`
	TotalFound        int             `json:"totalFound" yaml:"total_found"`
	SourcesSearched   []string        `json:"sourcesSearched" yaml:"sources_searched"`
	DuplicatesRemoved int             `json:"duplicatesRemoved" yaml:"duplicates_removed"`
	SearchTimeSeconds float64         `json:"searchTimeSeconds" yaml:"search_time_seconds"`
	Reliability       ReliabilityBand `json:"reliability" yaml:"reliability"`
	Access            AccessBand      `json:"access" yaml:"access"`
	Timeline          Timeline        `json:"timeline" yaml:"timeline"`
}

// ProgressEvent is emitted at phase boundaries and adapter lifecycle
// points during a search run.
type ProgressEvent struct {
	Type    string `json:"type"`
	Phase   string `json:"phase"`
	Source  string `json:"source,omitempty"`
	Status  string `json:"status"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	PhaseSearch    = "Search"
	PhaseCitations = "Citations"
	PhaseProcess   = "Process"
	PhaseComplete  = "Complete"

	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusError    = "error"
)
