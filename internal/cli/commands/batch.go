package commands

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/transql/internal/cli/output"
	"github.com/leapstack-labs/transql/internal/state"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of one file in a batch.
type BatchResult struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Translate every .sql file under a directory",
		Long: `Translate every .sql file under <dir> concurrently.

Each output is written next to its input, or under --out keeping the
relative layout, with the .sql extension replaced by the batch suffix.
Files already carrying the suffix are skipped. A failing file does not stop
the others; the command fails if any file failed.`,
		Example: `  # Translate a directory in place
  transql batch models

  # Write to another directory with 8 workers
  transql batch models --out translated --concurrency 8`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().String("out", "", "Directory to write translated files to")
	cmd.Flags().Int("concurrency", 0, "Number of files translated at once (default from config)")
	cmd.Flags().String("suffix", "", "Replacement for the .sql extension of outputs (default from config)")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	tr, err := cmdCtx.Translator()
	if err != nil {
		return err
	}

	root := args[0]
	outDir, _ := cmd.Flags().GetString("out")
	batch := cmdCtx.Cfg.Batch

	inputs, err := findSQLFiles(root, batch.Suffix)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("batch discovered files", slog.Int("files", len(inputs)), slog.Int("concurrency", batch.Concurrency))

	results := make([]BatchResult, len(inputs))
	records := make([]*state.Translation, len(inputs))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(batch.Concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			outputPath, err := batchOutputPath(root, outDir, input, batch.Suffix)
			if err != nil {
				return err
			}
			rec, err := translateFile(ctx, tr, input, outputPath)
			records[i] = rec
			results[i] = BatchResult{Input: input, Output: outputPath, Status: string(rec.Status)}
			if err != nil {
				results[i].Error = err.Error()
				cmdCtx.Logger.Debug("batch file failed", slog.String("input", input), slog.String("error", err.Error()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	recordHistory(cmd.Context(), cmdCtx, records...)

	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(results); ok {
		if err != nil {
			return err
		}
	} else if len(results) > 0 {
		rows := make([]table.Row, 0, len(results))
		for _, res := range results {
			detail := res.Output
			if res.Error != "" {
				detail = res.Error
			}
			rows = append(rows, table.Row{res.Input, res.Status, detail})
		}
		r.Table(table.Row{"Input", "Status", "Output / Error"}, rows)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to translate", failed, len(results))
	}
	if r.EffectiveMode() == output.ModeText {
		r.Success(fmt.Sprintf("Successfully translated %d files", len(results)))
	}
	return nil
}

// findSQLFiles lists the .sql files under root in lexical order, skipping
// earlier outputs.
func findSQLFiles(root, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".sql") {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), strings.ToLower(suffix)) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

// batchOutputPath maps input under root to its output path.
func batchOutputPath(root, outDir, input, suffix string) (string, error) {
	name := strings.TrimSuffix(input, filepath.Ext(input)) + suffix
	if outDir == "" {
		return name, nil
	}
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output for %s: %w", input, err)
	}
	return filepath.Join(outDir, rel), nil
}
