package main

import (
	"fmt"

	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/archive"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/cache"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/config"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/crawler"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/embedding"
	"github.com/eddiepiper/AI-Medical-Journal-Crawler-Bot/internal/pubmed"
)

// deps bundles the constructed components for one command invocation.
type deps struct {
	cfg     *config.Config
	store   *cache.Cache
	arch    *archive.Archive
	crawler *crawler.Crawler
}

// openDeps builds the component graph: config, embedding provider,
// semantic cache (restored from disk), PubMed client, and archive.
// The caller must invoke close when done.
func openDeps() (*deps, func(), error) {
	dir := config.DataDir()

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	var popts []embedding.OllamaOption
	if cfg.OllamaURL != "" {
		popts = append(popts, embedding.WithBaseURL(cfg.OllamaURL))
	}
	if cfg.OllamaModel != "" {
		popts = append(popts, embedding.WithModel(cfg.OllamaModel))
	}
	provider := embedding.NewOllamaProvider(popts...)

	store := cache.Open(provider, dir)

	var copts []pubmed.ClientOption
	if cfg.PubMedEmail != "" {
		copts = append(copts, pubmed.WithEmail(cfg.PubMedEmail))
	}
	if cfg.PubMedAPIKey != "" {
		copts = append(copts, pubmed.WithAPIKey(cfg.PubMedAPIKey))
	}
	client := pubmed.NewClient(copts...)

	arch, err := archive.Open(config.ArchivePath(dir))
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}

	d := &deps{
		cfg:     cfg,
		store:   store,
		arch:    arch,
		crawler: crawler.New(store, client, crawler.WithRecorder(arch)),
	}
	return d, func() { arch.Close() }, nil
}

// maxResultsOrDefault resolves the --max flag against the config.
func (d *deps) maxResultsOrDefault(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return d.cfg.MaxResults
}
