// Package config handles crawler configuration and data paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the configuration file name inside the data directory.
	ConfigFile = "config.yml"

	// ArchiveFile is the SQLite article archive file name.
	ArchiveFile = "articles.db"

	// DefaultDataDir is used when no data directory is configured.
	DefaultDataDir = "data"

	// DefaultMaxResults bounds a crawl when the caller does not say.
	DefaultMaxResults = 10

	// EnvDataDir overrides the data directory location.
	EnvDataDir = "MEDCRAWL_DATA"
)

// Config holds crawler settings loaded from config.yml. Zero values
// fall back to defaults; PubMed credentials may equally come from the
// environment (PUBMED_EMAIL, PUBMED_API_KEY), which the client reads
// itself.
type Config struct {
	OllamaURL    string `yaml:"ollama_url,omitempty"`
	OllamaModel  string `yaml:"ollama_model,omitempty"`
	PubMedEmail  string `yaml:"pubmed_email,omitempty"`
	PubMedAPIKey string `yaml:"pubmed_api_key,omitempty"`
	MaxResults   int    `yaml:"max_results,omitempty"`
}

// DataDir returns the directory holding the cache files, the article
// archive, and config.yml. The MEDCRAWL_DATA environment variable
// overrides the default.
func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	return DefaultDataDir
}

// ConfigPath returns the path to config.yml under dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFile)
}

// ArchivePath returns the path to the SQLite archive under dir.
func ArchivePath(dir string) string {
	return filepath.Join(dir, ArchiveFile)
}

// Load reads configuration from dir. A missing file returns a config
// of defaults, not an error.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{MaxResults: DefaultMaxResults}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &cfg, nil
}

// Save writes configuration to dir, creating it if needed.
func (c *Config) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(dir), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
