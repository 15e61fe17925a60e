// Command dmnfeel loads a DMN 1.5 XML model and evaluates it against a
// JSON input context, printing the JSON result to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dmnfeel",
		Short:         "Evaluate DMN decisions and FEEL expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newValidateCmd())
	return root
}
