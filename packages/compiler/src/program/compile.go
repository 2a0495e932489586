package program

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CompileOptions configures a compile run. Helpers and Import fill in
// programs that do not choose a helper mode themselves.
type CompileOptions struct {
	Helpers string
	Import  string
	Logger  *zap.Logger
}

// Compiled is the output of one program file.
type Compiled struct {
	Source    string
	Component string
	JS        string
}

// CompileAll loads and assembles every program concurrently. Units share no
// mutable state, so each file is compiled on its own goroutine; the first
// failure cancels the rest. Results keep the order of paths.
func CompileAll(ctx context.Context, paths []string, opts CompileOptions) ([]Compiled, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Compiled, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			start := time.Now()
			prog, err := Load(path)
			if err != nil {
				return err
			}
			if prog.Helpers == "" {
				prog.Helpers = opts.Helpers
			}
			if prog.Import == "" {
				prog.Import = opts.Import
			}
			unit, err := Assemble(prog)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = Compiled{Source: path, Component: unit.Component, JS: unit.JS()}

			logger.Debug("compiled program",
				zap.String("source", path),
				zap.String("component", unit.Component),
				zap.Int("blocks", len(unit.Blocks)),
				zap.Int("helpers", len(unit.Helpers)),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
