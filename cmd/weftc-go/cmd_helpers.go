package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"weftc-go/packages/compiler/src/helpers"
)

var helpersSources bool

var helpersCmd = &cobra.Command{
	Use:   "helpers",
	Short: "List the runtime helper registry",
	Long: `Lists every runtime helper generated code may reference, with the
helpers each one depends on. With --sources the JavaScript definitions are
printed instead, ready to seed a shared runtime module.`,
	Args: cobra.NoArgs,
	RunE: runHelpers,
}

func init() {
	helpersCmd.Flags().BoolVar(&helpersSources, "sources", false, "Print helper definitions instead of the summary")
}

func runHelpers(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if helpersSources {
		expanded, err := helpers.Expand(helpers.Names())
		if err != nil {
			return err
		}
		for i, h := range expanded {
			if i > 0 {
				fmt.Fprint(out, "\n\n")
			}
			fmt.Fprint(out, h.Source)
		}
		fmt.Fprintln(out)
		return nil
	}

	for _, h := range helpers.Registry() {
		if len(h.Deps) > 0 {
			fmt.Fprintf(out, "%s (uses %s)\n", h.Name, strings.Join(h.Deps, ", "))
		} else {
			fmt.Fprintln(out, h.Name)
		}
	}
	return nil
}
