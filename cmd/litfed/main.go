// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litfed CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litfed/internal/secrets"
	"github.com/pdiddy/litfed/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// credential resolves one credential: the .secrets/ file wins, then the
// bare environment variable, then fallback.
func credential(secretKey, envVar, fallback string) string {
	if v, ok := loadedSecrets[secretKey]; ok {
		return v
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

// rootCmd is the base command for the litfed CLI.
var rootCmd = &cobra.Command{
	Use:   "litfed",
	Short: "Federated search across scholarly literature APIs",
	Long: `litfed searches multiple scholarly literature APIs (arXiv, PubMed, Semantic
Scholar, OpenAlex, CrossRef, CORE, BASE, Europe PMC) for a single query, merges
duplicate records across sources, scores each paper's source reliability, and
ranks the merged set by relevance.

Each surface is a subcommand: search, paper, and serve.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litfed.yaml or ~/.config/litfed/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litfed")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litfed"))
		}
	}

	viper.SetEnvPrefix("LITFED")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// applyCredentials fills cfg's per-source credentials from .secrets/
// files and the documented environment variables.
func applyCredentials(cfg *types.SearchConfig) {
	cfg.NCBIAPIKey = credential("ncbi-api-key", "NCBI_API_KEY", "")
	cfg.SemanticScholarAPIKey = credential("semantic-scholar-api-key", "SEMANTIC_SCHOLAR_KEY", "")
	cfg.COREAPIKey = credential("core-api-key", "CORE_API_KEY", "")
	cfg.Email = credential("search-email", "SEARCH_EMAIL", cfg.Email)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
