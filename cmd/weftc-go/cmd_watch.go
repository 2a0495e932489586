package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weftc-go/packages/compiler/src/program"
)

var watchOut string

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Recompile block programs as they change",
	Long: `Watches a directory for block program changes and recompiles each
changed file once its events settle. A failing program is reported and
watching continues. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "Output directory (default: alongside each source file)")
}

const settleDelay = 300 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(args[0]); err != nil {
		return fmt.Errorf("watch %s: %w", args[0], err)
	}
	logger.Info("watching for program changes", zap.String("dir", args[0]))

	// Editors fire bursts of events per save; a path only compiles once its
	// last event is older than the settle delay.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isProgramEvent(event) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", zap.Error(err))

		case <-ticker.C:
			now := time.Now()
			for path, seen := range pending {
				if now.Sub(seen) < settleDelay {
					continue
				}
				delete(pending, path)
				recompile(ctx, path)
			}
		}
	}
}

// isProgramEvent reports whether the event is a write or create of a block
// program. Renames, removals and the config file itself are ignored.
func isProgramEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	if filepath.Base(event.Name) == "weftc.yaml" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".yaml" || ext == ".yml"
}

func recompile(ctx context.Context, path string) {
	results, err := program.CompileAll(ctx, []string{path}, compileOptions())
	if err != nil {
		logger.Error("compile failed", zap.String("source", path), zap.Error(err))
		return
	}
	for _, result := range results {
		out, err := writeModule(result, watchOut)
		if err != nil {
			logger.Error("write failed", zap.String("source", path), zap.Error(err))
			continue
		}
		logger.Info("recompiled", zap.String("source", path), zap.String("output", out))
	}
}
