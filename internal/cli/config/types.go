// Package config provides configuration management for the transql CLI.
//
// Values are layered from lowest to highest precedence: built-in defaults,
// the transql.yaml project file, TRANSQL_* environment variables and
// explicitly set command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	SourceDialect string `koanf:"source_dialect"`
	TargetDialect string `koanf:"target_dialect"`
	Verbose       bool   `koanf:"verbose"`
	OutputFormat  string `koanf:"output"`
	// ConcatIdentifiers rewrites + between bare identifiers to concat().
	ConcatIdentifiers bool           `koanf:"concat_identifiers"`
	Batch             *BatchConfig   `koanf:"batch"`
	History           *HistoryConfig `koanf:"history"`
}

// BatchConfig controls the batch command.
type BatchConfig struct {
	// Concurrency bounds how many files are translated at once.
	Concurrency int `koanf:"concurrency"`
	// Suffix replaces the .sql extension of each output file.
	Suffix string `koanf:"suffix"`
}

// HistoryConfig controls recording of translation runs.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Default configuration values.
const (
	DefaultSourceDialect    = "redshift"
	DefaultTargetDialect    = "databricks"
	DefaultOutput           = "auto" // TTY=styled text, otherwise plain text
	DefaultBatchConcurrency = 4
	DefaultBatchSuffix      = ".databricks.sql"
	DefaultHistoryPath      = ".transql/history.db"
)

// Defaults returns a Config populated with the built-in defaults.
func Defaults() *Config {
	return &Config{
		SourceDialect: DefaultSourceDialect,
		TargetDialect: DefaultTargetDialect,
		OutputFormat:  DefaultOutput,
		Batch: &BatchConfig{
			Concurrency: DefaultBatchConcurrency,
			Suffix:      DefaultBatchSuffix,
		},
		History: &HistoryConfig{
			Path: DefaultHistoryPath,
		},
	}
}
