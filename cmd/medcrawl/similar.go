package main

import (
	"github.com/spf13/cobra"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
)

var similarMax int

func init() {
	similarCmd.Flags().IntVar(&similarMax, "max", 5, "Maximum results to return")
	rootCmd.AddCommand(similarCmd)
}

var similarCmd = &cobra.Command{
	Use:   "similar <query>",
	Short: "Search the local cache by meaning, without fetching",
	Long: `Search the semantic cache for articles similar to a query.

Unlike search, this never contacts PubMed: it only ranks what the
cache already holds, by embedding similarity.

Examples:
  medcrawl similar "insulin resistance"
  medcrawl similar "heart failure outcomes" --max 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	d, closeDeps, err := openDeps()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer closeDeps()

	articles, err := d.crawler.Similar(cmd.Context(), args[0], similarMax)
	if err != nil {
		exitWithError(ExitOllamaError, "searching cache: %v", err)
	}

	if humanOutput {
		printArticlesHuman(articles)
	} else {
		if articles == nil {
			articles = []article.Article{}
		}
		outputJSON(articles)
	}
	return nil
}
