package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/config"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show store statistics",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

// InfoResponse reports the state of the local store.
type InfoResponse struct {
	DataDir        string `json:"data_dir"`
	CachedArticles int    `json:"cached_articles"`
	ArchivedCount  int    `json:"archived_articles"`
	EmbeddingModel string `json:"embedding_model"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	d, closeDeps, err := openDeps()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer closeDeps()

	archived, err := d.arch.ArticleCount()
	if err != nil {
		exitWithError(ExitError, "counting archived articles: %v", err)
	}

	info := InfoResponse{
		DataDir:        config.DataDir(),
		CachedArticles: d.store.Size(),
		ArchivedCount:  archived,
		EmbeddingModel: d.store.ModelName(),
	}

	if humanOutput {
		fmt.Printf("Data directory:    %s\n", info.DataDir)
		fmt.Printf("Cached articles:   %d\n", info.CachedArticles)
		fmt.Printf("Archived articles: %d\n", info.ArchivedCount)
		fmt.Printf("Embedding model:   %s\n", info.EmbeddingModel)
		return nil
	}
	return outputJSON(info)
}
