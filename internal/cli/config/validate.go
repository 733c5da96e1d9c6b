package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/transql/pkg/dialect"

	// Register the built-in dialects so they can be looked up by name.
	_ "github.com/leapstack-labs/transql/pkg/dialects/databricks"
	_ "github.com/leapstack-labs/transql/pkg/dialects/redshift"
)

// OutputModes lists the accepted values of the output key.
var OutputModes = []string{"auto", "text", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.SourceDialect); err != nil {
		return fmt.Errorf("invalid source_dialect: %w", err)
	}
	if _, err := dialect.Lookup(c.TargetDialect); err != nil {
		return fmt.Errorf("invalid target_dialect: %w", err)
	}
	if !slices.Contains(OutputModes, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("invalid output %q (expected one of: %s)", c.OutputFormat, strings.Join(OutputModes, ", "))
	}
	if c.Batch != nil {
		if c.Batch.Concurrency < 1 {
			return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
		}
		if c.Batch.Suffix == "" {
			return fmt.Errorf("batch.suffix is required")
		}
	}
	if c.History != nil && c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}

// Dialects resolves the configured source and target dialects.
func (c *Config) Dialects() (source, target *dialect.Dialect, err error) {
	if source, err = dialect.Lookup(c.SourceDialect); err != nil {
		return nil, nil, err
	}
	if target, err = dialect.Lookup(c.TargetDialect); err != nil {
		return nil, nil, err
	}
	return source, target, nil
}
