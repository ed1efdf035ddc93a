// Package config loads the run configuration from a YAML file, applies
// defaults, and lets environment variables override secrets so tokens
// stay out of checked-in files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Circlebit/procurement-analysis/internal/corpus"
)

// TokenEnv overrides api.token when set.
const TokenEnv = "PROCUREMENT_API_TOKEN"

// Duration is a time.Duration readable from YAML in "30s" form.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the top-level run configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Corpus  CorpusConfig  `yaml:"corpus"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds the notices API endpoint and retry policy.
type APIConfig struct {
	BaseURL      string   `yaml:"baseUrl"`
	Token        string   `yaml:"token"`
	Timeout      Duration `yaml:"timeout"`
	RetryCount   int      `yaml:"retryCount"`
	RetryWaitMin Duration `yaml:"retryWaitMin"`
	RetryWaitMax Duration `yaml:"retryWaitMax"`
}

// FetchConfig controls one fetch pass.
type FetchConfig struct {
	Month    string `yaml:"month"` // YYYY-MM, empty = full feed
	PageSize int    `yaml:"pageSize"`
	MaxPages int    `yaml:"maxPages"`
}

// CorpusConfig locates the corpus and sets its conflict policy.
type CorpusConfig struct {
	DataDir    string                `yaml:"dataDir"`
	OnConflict corpus.ConflictPolicy `yaml:"onConflict"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:      "https://oeffentlichevergabe.de",
			Timeout:      Duration(30 * time.Second),
			RetryCount:   3,
			RetryWaitMin: Duration(500 * time.Millisecond),
			RetryWaitMax: Duration(10 * time.Second),
		},
		Fetch: FetchConfig{
			PageSize: 100,
			MaxPages: 1000,
		},
		Corpus: CorpusConfig{
			DataDir:    "./data",
			OnConflict: corpus.ConflictReplace,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing
// file is fine; the defaults plus env overrides apply.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if token := os.Getenv(TokenEnv); token != "" {
		cfg.API.Token = token
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseUrl must not be empty")
	}
	if c.Fetch.PageSize <= 0 {
		return fmt.Errorf("fetch.pageSize must be positive, got %d", c.Fetch.PageSize)
	}
	if c.Fetch.MaxPages <= 0 {
		return fmt.Errorf("fetch.maxPages must be positive, got %d", c.Fetch.MaxPages)
	}
	if !corpus.ValidPolicy(c.Corpus.OnConflict) {
		return fmt.Errorf("corpus.onConflict must be one of replace, keep, error; got %q", c.Corpus.OnConflict)
	}
	return nil
}

// DBPath is the SQLite corpus location under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Corpus.DataDir, "notices.db")
}

// IndexPath is the bleve index location under the data directory.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Corpus.DataDir, "bleve")
}
