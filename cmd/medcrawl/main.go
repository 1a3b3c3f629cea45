// Package main provides the medcrawl CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "medcrawl",
	Short: "Semantic PubMed crawler with a persistent article cache",
	Long: `medcrawl crawls PubMed for articles matching a topical query and
caches them in a persistent semantic store, so repeated or related
queries are answered by meaning-based lookup instead of redundant
network calls.

Crawled articles are also archived in a local SQLite database along
with search history. All commands output JSON by default; use --human
for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (PUBMED_EMAIL, PUBMED_API_KEY, MEDCRAWL_DATA)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
