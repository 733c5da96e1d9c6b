package commands

import (
	"log/slog"

	"github.com/leapstack-labs/transql/internal/cli/config"
	"github.com/leapstack-labs/transql/internal/cli/output"
	"github.com/leapstack-labs/transql/internal/state"
	"github.com/leapstack-labs/transql/internal/translate"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the configuration, logger and renderer of cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetCurrentConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// Translator builds a translator for the configured dialects.
func (c *CommandContext) Translator() (*translate.Translator, error) {
	source, target, err := c.Cfg.Dialects()
	if err != nil {
		return nil, err
	}
	return translate.New(
		translate.WithDialects(source, target),
		translate.WithLogger(c.Logger),
		translate.WithConcatIdentifiers(c.Cfg.ConcatIdentifiers),
	), nil
}

// OpenHistory opens the history store. It returns nil when history
// recording is disabled and force is false.
func (c *CommandContext) OpenHistory(force bool) (*state.SQLiteStore, error) {
	if c.Cfg.History == nil || (!c.Cfg.History.Enabled && !force) {
		return nil, nil
	}
	return state.OpenSQLiteStore(c.Cfg.History.Path, c.Logger)
}
