package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the data directory and a default config file",
	Long: `Create the data directory (default "data", override with
MEDCRAWL_DATA) and write a default config.yml there. Existing config
is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := config.DataDir()
	path := config.ConfigPath(dir)

	if _, err := os.Stat(path); err == nil {
		exitWithError(ExitConfigError, "config already exists at %s", path)
	}

	cfg := &config.Config{MaxResults: config.DefaultMaxResults}
	if err := cfg.Save(dir); err != nil {
		exitWithError(ExitError, "initializing data directory: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized data directory at %s\n", dir)
		return nil
	}
	return outputJSON(StatusResponse{Status: "initialized", Path: dir})
}
