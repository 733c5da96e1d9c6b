package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/transql/internal/state"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recorded translation runs",
		Long: `List the translation runs recorded in the history database, newest first,
or show a single run by ID.

Runs are only recorded when history is enabled (history.enabled in
transql.yaml, TRANSQL_HISTORY_ENABLED or --history).`,
		Example: `  # Last 20 runs
  transql history

  # Everything, as JSON
  transql history --limit 0 --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if _, err := os.Stat(cmdCtx.Cfg.History.Path); errors.Is(err, os.ErrNotExist) {
		r.Println(r.Paint(r.Styles().Muted, "No translations recorded yet."))
		return nil
	}

	store, err := cmdCtx.OpenHistory(true)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	var runs []*state.Translation
	if len(args) == 1 {
		run, err := store.GetTranslation(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		runs = []*state.Translation{run}
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		if runs, err = store.ListTranslations(cmd.Context(), limit); err != nil {
			return err
		}
	}

	if ok, err := r.Structured(runs); ok {
		return err
	}
	if len(runs) == 0 {
		r.Println(r.Paint(r.Styles().Muted, "No translations recorded yet."))
		return nil
	}

	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		status := r.Paint(r.Styles().Success, string(run.Status))
		if run.Status == state.StatusFailed {
			status = r.Paint(r.Styles().Error, string(run.Status))
		}
		rows = append(rows, table.Row{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Input,
			run.Output,
			status,
			run.Statements,
			run.CTEs,
			run.Hoisted,
			run.Duration.String(),
		})
	}
	r.Table(table.Row{"ID", "Started", "Input", "Output", "Status", "Statements", "CTEs", "Hoisted", "Duration"}, rows)

	for _, run := range runs {
		if run.Error != "" {
			r.Printf("%s %s\n", r.Paint(r.Styles().Muted, run.ID+":"), run.Error)
		}
	}
	return nil
}
