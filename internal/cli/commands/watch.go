package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce collapses the bursts of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <input> <output>",
		Short: "Re-translate a file whenever it changes",
		Long: `Translate <input> into <output>, then keep watching <input> and translate
it again on every change. Translation errors are reported and watching
continues. Stop with Ctrl+C.`,
		Example: `  transql watch models/orders.sql out/orders.sql`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], args[1])
		},
	}
}

func runWatch(ctx context.Context, cmd *cobra.Command, input, outputPath string) error {
	cmdCtx := NewCommandContext(cmd)
	tr, err := cmdCtx.Translator()
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	translateOnce := func() {
		rec, err := translateFile(ctx, tr, input, outputPath)
		recordHistory(ctx, cmdCtx, rec)
		if err != nil {
			r.Error(fmt.Sprintf("Error: %v", err))
			return
		}
		r.Success(fmt.Sprintf("Successfully translated SQL from %s to %s", input, outputPath))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file instead of writing it, so the
	// directory is watched and events are filtered by name.
	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}

	translateOnce()
	cmdCtx.Logger.Debug("watching", slog.String("input", target))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			cmdCtx.Logger.Debug("file changed, re-translating", slog.String("file", input))
			translateOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}
