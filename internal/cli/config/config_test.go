package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "transql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.Bool("verbose", false, "")
	flags.String("source-dialect", "", "")
	flags.Int("concurrency", 0, "")
	flags.String("suffix", "", "")
	flags.Bool("history", false, "")
	flags.String("history-path", "", "")
	flags.Bool("concat-identifiers", false, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "redshift", cfg.SourceDialect)
	assert.Equal(t, "databricks", cfg.TargetDialect)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, ".databricks.sql", cfg.Batch.Suffix)
	assert.False(t, cfg.History.Enabled)
	assert.False(t, cfg.ConcatIdentifiers)
	assert.Equal(t, filepath.Join(dir, ".transql", "history.db"), cfg.History.Path)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
output: json
verbose: true
batch:
  concurrency: 2
  suffix: .dbx.sql
history:
  enabled: true
  path: state/runs.db
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, ".dbx.sql", cfg.Batch.Suffix)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, filepath.Join(dir, "state", "runs.db"), cfg.History.Path)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_FoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "output: yaml\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, filepath.Join(root, ".transql", "history.db"), cfg.History.Path)
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "output: json\nbatch:\n  concurrency: 2\n")
	t.Setenv("TRANSQL_OUTPUT", "text")
	t.Setenv("TRANSQL_BATCH_CONCURRENCY", "8")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.OutputFormat)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, "output: json\nbatch:\n  suffix: .file.sql\n")
	t.Setenv("TRANSQL_OUTPUT", "text")
	t.Setenv("TRANSQL_BATCH_CONCURRENCY", "8")

	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{"--output", "yaml", "--concurrency", "3", "--history"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.OutputFormat, "flag should override env")
	assert.Equal(t, 3, cfg.Batch.Concurrency, "flag should override env")
	assert.Equal(t, ".file.sql", cfg.Batch.Suffix, "unset flag should not override file")
	assert.True(t, cfg.History.Enabled)
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("TRANSQL_VERBOSE", "true")

	flags := newFlagSet()
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_HistoryPathFlag(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{"--history-path", "runs.db"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	abs, err := filepath.Abs("runs.db")
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.History.Path)
}

func TestLoadConfig_ConcatIdentifiers(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, t.TempDir(), "concat_identifiers: true\n")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.True(t, cfg.ConcatIdentifiers)
	})

	t.Run("env", func(t *testing.T) {
		ResetConfig()
		t.Chdir(t.TempDir())
		t.Setenv("TRANSQL_CONCAT_IDENTIFIERS", "true")

		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.True(t, cfg.ConcatIdentifiers)
	})

	t.Run("flag", func(t *testing.T) {
		ResetConfig()
		t.Chdir(t.TempDir())

		flags := newFlagSet()
		require.NoError(t, flags.Parse([]string{"--concat-identifiers"}))

		cfg, err := LoadConfig("", flags)
		require.NoError(t, err)
		assert.True(t, cfg.ConcatIdentifiers)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown source dialect", "source_dialect: oracle\n", "invalid source_dialect"},
		{"unknown target dialect", "target_dialect: snowflake\n", "invalid target_dialect"},
		{"bad output", "output: csv\n", "invalid output"},
		{"zero concurrency", "batch:\n  concurrency: 0\n", "batch.concurrency"},
		{"malformed yaml", "output: [json\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), tt.content)

			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestKeyMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		fn       func(string) string
	}{
		{"TRANSQL_OUTPUT", "output", envKey},
		{"TRANSQL_SOURCE_DIALECT", "source_dialect", envKey},
		{"TRANSQL_BATCH_CONCURRENCY", "batch.concurrency", envKey},
		{"TRANSQL_HISTORY_PATH", "history.path", envKey},
		{"TRANSQL_CONCAT_IDENTIFIERS", "concat_identifiers", envKey},
		{"concat-identifiers", "concat_identifiers", flagKey},
		{"target-dialect", "target_dialect", flagKey},
		{"suffix", "batch.suffix", flagKey},
		{"history", "history.enabled", flagKey},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn(tt.input))
		})
	}
}

func TestConfig_Dialects(t *testing.T) {
	source, target, err := Defaults().Dialects()
	require.NoError(t, err)
	assert.Equal(t, "redshift", source.Name)
	assert.Equal(t, "databricks", target.Name)
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "missing logger should fall back to discard")

	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	logger.Debug("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	NewLogger(&buf, true).Debug("graph built")
	assert.Contains(t, buf.String(), "graph built")
}
