//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/litfed/internal/adapter"
	"github.com/pdiddy/litfed/internal/orchestrator"
	"github.com/pdiddy/litfed/pkg/types"
)

// Search runs a one-off federated literature search from the command
// line, useful for smoke-testing adapter wiring without building the CLI.
func Search(query string) error {
	if query == "" {
		return fmt.Errorf("usage: mage search \"<query>\"")
	}
	cfg := types.DefaultSearchConfig()
	orch := orchestrator.New(
		adapter.NewArxivBackend(cfg.UserAgent),
		adapter.NewPubMedBackend(cfg.UserAgent, cfg.NCBIAPIKey, cfg.Email),
		adapter.NewSemanticScholarBackend(cfg.UserAgent, cfg.SemanticScholarAPIKey),
		adapter.NewOpenAlexBackend(cfg.UserAgent, cfg.Email),
		adapter.NewCrossRefBackend(cfg.UserAgent, cfg.Email),
		adapter.NewCoreBackend(cfg.UserAgent, cfg.COREAPIKey),
		adapter.NewBaseBackend(cfg.UserAgent),
		adapter.NewEuropePMCBackend(cfg.UserAgent),
	)
	result, err := orch.Search(context.Background(), query, cfg, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d papers found, %d duplicates removed\n", result.TotalFound, result.DuplicatesRemoved)
	return nil
}
