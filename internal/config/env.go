// Package config provides application configuration.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mcpcontext/docsearch/internal/indexing"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DOCSEARCH"

// Log formats accepted by LOG_FORMAT.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the DOCSEARCH_ prefix.
type EnvConfig struct {
	// ArchiveDir is the directory scanned for zip archives.
	// Env: DOCSEARCH_ARCHIVE_DIR (default: .)
	ArchiveDir string `envconfig:"ARCHIVE_DIR" default:"."`

	// SearchLimit is the default number of results per query.
	// Env: DOCSEARCH_SEARCH_LIMIT (default: 5)
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"5"`

	// Engine selects the index implementation (tfidf or bleve).
	// Env: DOCSEARCH_ENGINE (default: tfidf)
	Engine string `envconfig:"ENGINE" default:"tfidf"`

	// FieldsFile is an optional YAML file declaring the field schema.
	// Env: DOCSEARCH_FIELDS_FILE
	FieldsFile string `envconfig:"FIELDS_FILE"`

	// LogLevel is the log verbosity level.
	// Env: DOCSEARCH_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (text or json).
	// Env: DOCSEARCH_LOG_FORMAT (default: text)
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// FetchTimeout bounds page fetches.
	// Env: DOCSEARCH_FETCH_TIMEOUT (default: 15s)
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`

	// ReaderBaseURL is prepended to the page URL by the fetch tool.
	// Env: DOCSEARCH_READER_BASE_URL (default: https://r.jina.ai/)
	ReaderBaseURL string `envconfig:"READER_BASE_URL" default:"https://r.jina.ai/"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("%w: %v", indexing.ErrConfiguration, err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	return cfg, cfg.Validate()
}

// Validate checks values envconfig cannot.
func (c EnvConfig) Validate() error {
	if c.ArchiveDir == "" {
		return fmt.Errorf("%w: archive directory must not be empty", indexing.ErrConfiguration)
	}
	if c.SearchLimit < 0 {
		return fmt.Errorf("%w: search limit must not be negative, got %d", indexing.ErrConfiguration, c.SearchLimit)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", indexing.ErrConfiguration, c.LogFormat)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive", indexing.ErrConfiguration)
	}
	return nil
}

// Usage writes a table of the recognised environment variables to w.
func Usage(w io.Writer) error {
	var cfg EnvConfig
	return envconfig.Usagef(EnvPrefix, &cfg, w, envconfig.DefaultTableFormat)
}
