// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litfed/pkg/types"
)

// QueryFile is the on-disk snapshot of one search invocation: the query
// and configuration that produced it, plus the ranked result. Saving one
// is an explicit, user-invoked action (e.g. `litfed search --query-file
// out.yaml`); nothing is written automatically.
type QueryFile struct {
	Query   string             `yaml:"query"`
	Config  QueryFileConfig    `yaml:"config"`
	Result  types.SearchResult `yaml:"result"`
	SavedAt time.Time          `yaml:"saved_at"`
}

// QueryFileConfig stores the subset of SearchConfig relevant to
// reproducing a saved search.
type QueryFileConfig struct {
	MaxPerSource     int      `yaml:"max_per_source"`
	ExpandCitations  bool     `yaml:"expand_citations"`
	IncludePreprints bool     `yaml:"include_preprints"`
	MinReliability   float64  `yaml:"min_reliability"`
	YearStart        *int     `yaml:"year_start,omitempty"`
	YearEnd          *int     `yaml:"year_end,omitempty"`
}

// WriteQueryFile saves query, cfg, and result to path as YAML.
func WriteQueryFile(path, query string, cfg types.SearchConfig, result *types.SearchResult) error {
	qf := QueryFile{
		Query: query,
		Config: QueryFileConfig{
			MaxPerSource:     cfg.MaxPerSource,
			ExpandCitations:  cfg.ExpandCitations,
			IncludePreprints: cfg.IncludePreprints,
			MinReliability:   cfg.MinReliability,
			YearStart:        cfg.YearStart,
			YearEnd:          cfg.YearEnd,
		},
		Result:  *result,
		SavedAt: time.Now(),
	}
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
