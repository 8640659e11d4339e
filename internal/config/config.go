// Package config defines the run configuration and how it is loaded.
//
// Conventions:
// - Provide New(...Option) initializer to build a Config with defaults.
// - Load layers a .env file, a config file and CASCADE_* variables on top.
// - Errors wrap this package's sentinels so callers can use errors.Is.
package config

import (
	"fmt"
	"runtime"
	"unicode/utf8"

	"github.com/okian/cascade/internal/adapters/source"
	"github.com/okian/cascade/internal/domain/allocation"
	"github.com/okian/cascade/internal/report"
)

// Output formats understood by the report renderer.
const (
	FormatText = report.FormatText
	FormatJSON = report.FormatJSON
	FormatYAML = report.FormatYAML
)

// Config contains process configuration.
type Config struct {
	// Files lists the track sources in allocation order. Local paths and URLs both work.
	Files []string `koanf:"files"`

	// BudgetPlaces holds the seat capacity of each track, parallel to Files.
	BudgetPlaces []int `koanf:"budget_places"`

	// MyID is the applicant the report is written for.
	MyID string `koanf:"my_id"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// OutputFormat selects the report format: text, json or yaml.
	OutputFormat string `koanf:"output_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Serve keeps the process running with the HTTP API after the first run.
	Serve bool `koanf:"serve"`

	// Delimiter is the single-character field separator of the track files.
	Delimiter string `koanf:"delimiter"`

	// SkipHeader drops the first row of every track file.
	SkipHeader bool `koanf:"skip_header"`

	// ActiveStatus keeps only rows whose status column equals it. Empty disables the filter.
	ActiveStatus string `koanf:"active_status"`

	// NoConsentMarker drops rows whose consent column equals it. Empty disables the filter.
	NoConsentMarker string `koanf:"no_consent_marker"`

	// Columns maps each field to its zero-based column.
	Columns source.Schema `koanf:"columns"`

	// LoaderWorkers sets how many track files are read concurrently.
	LoaderWorkers int `koanf:"loader_workers"`

	// QueueSize bounds the load job queue.
	QueueSize int `koanf:"queue_size"`
}

// Option applies a configuration option to the Config.
type Option func(*Config)

// WithTracks sets the track sources and their capacities.
func WithTracks(files []string, budgetPlaces []int) Option {
	return func(c *Config) {
		c.Files = files
		c.BudgetPlaces = budgetPlaces
	}
}

// WithMyID sets the applicant the report is written for.
func WithMyID(id string) Option {
	return func(c *Config) { c.MyID = id }
}

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) Option {
	return func(c *Config) { c.Addr = addr }
}

// New creates a Config with defaults and applies opts.
func New(opts ...Option) *Config {
	c := &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		OutputFormat:    FormatText,
		Addr:            ":9080",
		Delimiter:       string(source.DefaultDelimiter),
		SkipHeader:      true,
		ActiveStatus:    source.DefaultActiveStatus,
		NoConsentMarker: source.DefaultNoConsentMarker,
		Columns:         source.DefaultSchema(),
		LoaderWorkers:   runtime.NumCPU(),
		QueueSize:       1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DelimiterRune returns the field separator as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate checks everything a run needs before any file is touched.
func (c *Config) Validate() error {
	if len(c.Files) == 0 || len(c.BudgetPlaces) == 0 || c.MyID == "" {
		return fmt.Errorf("%w: files, budget_places and my_id are required", ErrInvalidConfig)
	}
	if len(c.Files) != len(c.BudgetPlaces) {
		return fmt.Errorf("%w: %w: %d files, %d budget places",
			ErrInvalidConfig, allocation.ErrTrackCountMismatch, len(c.Files), len(c.BudgetPlaces))
	}
	for i, n := range c.BudgetPlaces {
		if n < 0 {
			return fmt.Errorf("%w: %w: budget_places[%d] = %d", ErrInvalidConfig, allocation.ErrNegativeCapacity, i, n)
		}
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidConfig, c.Delimiter)
	}
	if err := c.Columns.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.OutputFormat {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.OutputFormat)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.LoaderWorkers < 1 || c.QueueSize < 1 {
		return fmt.Errorf("%w: loader_workers and queue_size must be positive", ErrInvalidConfig)
	}
	return nil
}
