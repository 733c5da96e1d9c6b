package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/transql/internal/state"
	"github.com/leapstack-labs/transql/internal/translate"
	"github.com/spf13/cobra"
)

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <input> <output>",
		Short: "Translate a Redshift SQL file to Databricks SQL",
		Long: `Translate the SQL in <input> and write the result to <output>.

The output file is only written once the whole input has been translated;
on any error it is left untouched.`,
		Example: `  # Translate one file
  transql translate models/orders.sql out/orders.sql

  # The root command does the same
  transql models/orders.sql out/orders.sql`,
		Args: cobra.ExactArgs(2),
		RunE: RunTranslate,
	}
}

// RunTranslate translates args[0] into args[1].
func RunTranslate(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	tr, err := cmdCtx.Translator()
	if err != nil {
		return err
	}

	input, outputPath := args[0], args[1]
	rec, err := translateFile(cmd.Context(), tr, input, outputPath)
	recordHistory(cmd.Context(), cmdCtx, rec)
	if err != nil {
		return err
	}

	cmdCtx.Renderer.Success(fmt.Sprintf("Successfully translated SQL from %s to %s", input, outputPath))
	return nil
}

// translateFile reads input, translates it and atomically writes output.
// The returned record describes the run whether or not it failed.
func translateFile(ctx context.Context, tr *translate.Translator, input, outputPath string) (*state.Translation, error) {
	rec := &state.Translation{
		Input:     input,
		Output:    outputPath,
		Status:    state.StatusFailed,
		StartedAt: time.Now().UTC(),
	}

	res, err := translateSource(ctx, tr, input)
	if err == nil {
		err = writeFileAtomic(outputPath, []byte(res.SQL))
	}
	rec.Duration = time.Since(rec.StartedAt)
	if err != nil {
		rec.Error = err.Error()
		return rec, err
	}

	rec.Status = state.StatusSuccess
	rec.Statements = len(res.Statements)
	for _, stmt := range res.Statements {
		rec.CTEs += stmt.Graph.Len()
		rec.Hoisted += stmt.Hoisted
	}
	return rec, nil
}

// translateSource reads and translates one file, wrapping failures in the
// messages reported to the user.
func translateSource(ctx context.Context, tr *translate.Translator, input string) (*translate.Result, error) {
	if _, err := os.Stat(input); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input file %s does not exist", input)
	}
	src, err := os.ReadFile(input) //nolint:gosec // path is user-provided CLI input
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := tr.Translate(string(src))
	switch {
	case errors.Is(err, translate.ErrTranslation):
		return nil, fmt.Errorf("error translating SQL: %w", err)
	case err != nil:
		return nil, fmt.Errorf("error parsing SQL: %w", err)
	}
	return res, nil
}

func recordHistory(ctx context.Context, cmdCtx *CommandContext, recs ...*state.Translation) {
	store, err := cmdCtx.OpenHistory(false)
	if err != nil {
		cmdCtx.Logger.Warn("history unavailable", slog.String("error", err.Error()))
		return
	}
	if store == nil {
		return
	}
	defer func() { _ = store.Close() }()

	for _, rec := range recs {
		if rec == nil {
			continue
		}
		if err := store.RecordTranslation(ctx, rec); err != nil {
			cmdCtx.Logger.Warn("failed to record translation", slog.String("input", rec.Input), slog.String("error", err.Error()))
		}
	}
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
