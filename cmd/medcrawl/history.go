package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/archive"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum queries to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent search queries",
	Long:  `Show recent search queries with usage counts, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, closeDeps, err := openDeps()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer closeDeps()

	stats, err := d.arch.RecentSearches(historyLimit)
	if err != nil {
		exitWithError(ExitError, "reading search history: %v", err)
	}

	if humanOutput {
		if len(stats) == 0 {
			fmt.Println("No searches recorded")
			return nil
		}
		for _, s := range stats {
			fmt.Printf("%3dx  %-40s  last: %s\n", s.Count, s.Query, s.LastSearched)
		}
		return nil
	}

	if stats == nil {
		stats = []archive.SearchStat{}
	}
	return outputJSON(stats)
}
