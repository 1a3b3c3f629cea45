package main

import (
	"github.com/spf13/cobra"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/article"
)

var (
	searchMax     int
	searchRefresh bool
)

func init() {
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "Maximum results to return (default from config)")
	searchCmd.Flags().BoolVar(&searchRefresh, "refresh", false, "Bypass the cache and fetch fresh results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Crawl PubMed for articles matching a query",
	Long: `Crawl PubMed for articles matching a free-text query.

The semantic cache is consulted first: when it already holds enough
good matches the query is answered locally. Otherwise PubMed is
queried, results are normalized and written into the cache, and the
fresh articles are returned.

Examples:
  medcrawl search "AI in cardiology"
  medcrawl search "diabetes treatment" --max 5
  medcrawl search "diabetes treatment" --refresh`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	d, closeDeps, err := openDeps()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer closeDeps()

	query := args[0]
	max := d.maxResultsOrDefault(searchMax)

	articles, err := d.crawler.Crawl(cmd.Context(), query, max, searchRefresh)
	if err != nil {
		// The front-end contract collapses failures to "no results",
		// but the reason still reaches the terminal via stderr.
		exitWithError(ExitAPIError, "searching %q: %v", query, err)
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
