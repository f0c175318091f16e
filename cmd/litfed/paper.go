// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litfed/internal/adapter"
	"github.com/pdiddy/litfed/pkg/types"
)

var paperCmd = &cobra.Command{
	Use:   "paper [id]",
	Short: "Fetch a single paper by its source-prefixed id",
	Long: `Paper dispatches to the adapter identified by the id's source prefix
(pubmed_, s2_, arxiv_, openalex_, crossref_, core_, base_, europmc_) and
fetches that record directly, bypassing search ranking. A bare DOI
(10.xxxx/...) with no prefix is resolved through OpenAlex.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaper,
}

func init() {
	paperCmd.Flags().Bool("json", false, "output the paper as JSON")
	paperCmd.Flags().Bool("enrich", false, "backfill open-access fields from Unpaywall when the paper has a DOI")
	rootCmd.AddCommand(paperCmd)
}

// paperPrefixes maps an id's source prefix to the backend that owns it.
// Order does not matter; lookups are by exact prefix match.
var paperPrefixes = map[string]string{
	"pubmed_":   "pubmed",
	"s2_":       "semantic_scholar",
	"arxiv_":    "arxiv",
	"openalex_": "openalex",
	"crossref_": "crossref",
	"core_":     "core",
	"base_":     "base",
	"europmc_":  "europe_pmc",
}

func runPaper(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	enrich, _ := cmd.Flags().GetBool("enrich")
	id := args[0]

	cfg := types.DefaultSearchConfig()
	cfg.UserAgent = defaultUserAgent
	applyCredentials(&cfg)

	backends := buildAdapters(cfg)
	byName := make(map[string]adapter.Backend, len(backends))
	for _, b := range backends {
		byName[b.Name()] = b
	}

	var target adapter.Backend
	switch {
	case strings.HasPrefix(id, "10."):
		target = byName["openalex"]
	default:
		for prefix, name := range paperPrefixes {
			if strings.HasPrefix(id, prefix) {
				target = byName[name]
				break
			}
		}
	}
	if target == nil {
		return fmt.Errorf("unrecognized id prefix for %q", id)
	}

	paper, err := target.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	if paper == nil {
		return fmt.Errorf("paper %q not found", id)
	}

	if enrich && paper.DOI != "" {
		unpaywall := adapter.NewUnpaywallBackend(cfg.UserAgent, cfg.Email)
		if err := unpaywall.EnrichPaper(context.Background(), paper); err != nil {
			fmt.Fprintf(os.Stderr, "warning: unpaywall enrichment failed: %v\n", err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(paper)
	}

	fmt.Printf("%s\n", paper.Title)
	if len(paper.Authors) > 0 {
		names := make([]string, len(paper.Authors))
		for i, a := range paper.Authors {
			names[i] = a.Name
		}
		fmt.Printf("Authors: %s\n", strings.Join(names, ", "))
	}
	if paper.Year != nil {
		fmt.Printf("Year: %d\n", *paper.Year)
	}
	if paper.DOI != "" {
		fmt.Printf("DOI: %s\n", paper.DOI)
	}
	fmt.Printf("Reliability: %.2f (%s)\n", paper.Reliability.Total(), paper.Reliability.Level())
	return nil
}
