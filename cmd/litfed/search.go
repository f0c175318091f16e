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
	"github.com/pdiddy/litfed/internal/orchestrator"
	"github.com/pdiddy/litfed/pkg/types"
)

const defaultUserAgent = "litfed/0.1 (https://github.com/pdiddy/litfed)"

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search federated scholarly literature APIs for candidate papers",
	Long: `Search queries arXiv, PubMed, Semantic Scholar, OpenAlex, CrossRef, CORE, BASE,
and Europe PMC for papers matching a research question, merges duplicate
records across sources, scores each merged paper's source reliability, and
ranks the set by relevance.

Use --query-file to save results to a YAML file for later review. When
--query-file is provided without a query, the saved results are displayed.

Use --csl to output results in CSL YAML format for Pandoc and reference managers.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text research question")
	searchCmd.Flags().Int("max-per-source", 100, "maximum records fetched per source")
	searchCmd.Flags().Bool("expand-citations", true, "walk citations/references of top-cited results")
	searchCmd.Flags().Bool("include-preprints", true, "include preprint-only papers in results")
	searchCmd.Flags().Float64("min-reliability", 0, "drop papers below this reliability score (0-1)")
	searchCmd.Flags().Int("year-start", 0, "earliest publication year to include")
	searchCmd.Flags().Int("year-end", 0, "latest publication year to include")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL YAML for reference managers")
	searchCmd.Flags().String("query-file", "", "YAML file to save/load query and results")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	queryText, _ := cmd.Flags().GetString("query")
	maxPerSource, _ := cmd.Flags().GetInt("max-per-source")
	expandCitations, _ := cmd.Flags().GetBool("expand-citations")
	includePreprints, _ := cmd.Flags().GetBool("include-preprints")
	minReliability, _ := cmd.Flags().GetFloat64("min-reliability")
	yearStart, _ := cmd.Flags().GetInt("year-start")
	yearEnd, _ := cmd.Flags().GetInt("year-end")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	cslOutput, _ := cmd.Flags().GetBool("csl")
	queryFile, _ := cmd.Flags().GetString("query-file")

	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	if queryFile != "" && queryText == "" {
		return loadAndDisplayQueryFile(queryFile, jsonOutput, cslOutput)
	}

	cfg := types.DefaultSearchConfig()
	cfg.UserAgent = defaultUserAgent
	cfg.MaxPerSource = maxPerSource
	cfg.ExpandCitations = expandCitations
	cfg.IncludePreprints = includePreprints
	cfg.MinReliability = minReliability
	if yearStart > 0 {
		cfg.YearStart = &yearStart
	}
	if yearEnd > 0 {
		cfg.YearEnd = &yearEnd
	}
	applyCredentials(&cfg)

	o := orchestrator.New(buildAdapters(cfg)...)

	progress := make(chan types.ProgressEvent, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range progress {
			fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", ev.Phase, ev.Source, ev.Message)
		}
	}()

	result, err := o.Search(context.Background(), queryText, cfg, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if queryFile != "" {
		if err := orchestrator.WriteQueryFile(queryFile, queryText, cfg, result); err != nil {
			return fmt.Errorf("saving query file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved query and %d results to %s\n", len(result.Papers), queryFile)
	}

	return formatSearchOutput(result, jsonOutput, cslOutput)
}

// buildAdapters constructs the default fan-out registry: one Backend per
// source, each seeded with whatever credentials cfg carries.
func buildAdapters(cfg types.SearchConfig) []adapter.Backend {
	return []adapter.Backend{
		adapter.NewArxivBackend(cfg.UserAgent),
		adapter.NewPubMedBackend(cfg.UserAgent, cfg.NCBIAPIKey, cfg.Email),
		adapter.NewSemanticScholarBackend(cfg.UserAgent, cfg.SemanticScholarAPIKey),
		adapter.NewOpenAlexBackend(cfg.UserAgent, cfg.Email),
		adapter.NewCrossRefBackend(cfg.UserAgent, cfg.Email),
		adapter.NewCoreBackend(cfg.UserAgent, cfg.COREAPIKey),
		adapter.NewBaseBackend(cfg.UserAgent),
		adapter.NewEuropePMCBackend(cfg.UserAgent),
	}
}

func loadAndDisplayQueryFile(path string, jsonOutput, cslOutput bool) error {
	qf, err := orchestrator.ReadQueryFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d results from %s (saved %s)\n",
		len(qf.Result.Papers), path, qf.SavedAt.Format("2006-01-02 15:04"))
	return formatSearchOutput(&qf.Result, jsonOutput, cslOutput)
}

func formatSearchOutput(result *types.SearchResult, jsonOutput, cslOutput bool) error {
	if cslOutput {
		return orchestrator.WriteCSL(os.Stdout, result.Papers)
	}
	if jsonOutput {
		return formatJSON(result, os.Stdout)
	}
	formatTable(result, os.Stdout)
	return nil
}

func formatJSON(result *types.SearchResult, w *os.File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func formatTable(result *types.SearchResult, w *os.File) {
	if len(result.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Reliab", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, p := range result.Papers {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		authors := formatAuthors(p.Authors)
		year := ""
		if p.Year != nil {
			year = fmt.Sprintf("%d", *p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6.2f  %-6.2f  %s\n",
			i+1, title, authors, year, p.RelevanceScore, p.Reliability.Total(), strings.Join(p.SourcesFoundIn, ","))
	}

	fmt.Fprintf(w, "\n%d results (%d found, %d duplicates removed)\n",
		len(result.Papers), result.TotalFound, result.DuplicatesRemoved)
}

func formatAuthors(authors []types.Author) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0].Name, 20)
	default:
		return truncate(authors[0].Name, 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
