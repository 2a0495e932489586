package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weftc-go/packages/compiler/src/program"
)

var (
	buildOut     string
	buildStdout  bool
	buildHelpers string
	buildImport  string
)

var buildCmd = &cobra.Command{
	Use:   "build <file...>",
	Short: "Compile block programs to JavaScript modules",
	Long: `Compiles one or more block program files concurrently. Each program
becomes a <Component>.js module written next to its source, or into the
directory given with --out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output directory (default: alongside each source file)")
	buildCmd.Flags().BoolVar(&buildStdout, "stdout", false, "Write generated modules to stdout instead of files")
	buildCmd.Flags().StringVar(&buildHelpers, "helpers", "", "Helper emission mode: inline or import")
	buildCmd.Flags().StringVar(&buildImport, "import", "", "Module specifier helpers are imported from")
}

func runBuild(cmd *cobra.Command, args []string) error {
	results, err := program.CompileAll(cmd.Context(), args, compileOptions())
	if err != nil {
		return err
	}

	for _, result := range results {
		if buildStdout {
			fmt.Fprint(cmd.OutOrStdout(), result.JS)
			continue
		}
		path, err := writeModule(result, buildOut)
		if err != nil {
			return err
		}
		logger.Info("wrote module",
			zap.String("source", result.Source),
			zap.String("output", path),
		)
	}
	return nil
}

// compileOptions merges command flags over the optional weftc.yaml.
func compileOptions() program.CompileOptions {
	opts := program.CompileOptions{
		Helpers: cfg.Helpers,
		Import:  cfg.Import,
		Logger:  logger,
	}
	if buildHelpers != "" {
		opts.Helpers = buildHelpers
	}
	if buildImport != "" {
		opts.Import = buildImport
	}
	return opts
}

// outputPath decides where a compiled module lands: the explicit directory
// if given, the configured one otherwise, and next to the source as a last
// resort.
func outputPath(result program.Compiled, outDir string) string {
	if outDir == "" {
		outDir = cfg.Output
	}
	if outDir == "" {
		outDir = filepath.Dir(result.Source)
	}
	return filepath.Join(outDir, result.Component+".js")
}

func writeModule(result program.Compiled, outDir string) (string, error) {
	path := outputPath(result, outDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("write module: %w", err)
	}
	if err := os.WriteFile(path, []byte(result.JS), 0o644); err != nil {
		return "", fmt.Errorf("write module: %w", err)
	}
	return path, nil
}
