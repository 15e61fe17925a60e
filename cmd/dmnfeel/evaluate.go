package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dmnfeel/engine/diagnostics"
	"github.com/dmnfeel/engine/dmnxml"
	"github.com/dmnfeel/engine/engine"
	"github.com/dmnfeel/engine/jsoncodec"
	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	var (
		modelPath  string
		inputPath  string
		strictMode bool
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Load a DMN model and evaluate it against a JSON input context",
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelPath == "" {
				return fmt.Errorf("--model is required")
			}

			xmlBytes, err := os.ReadFile(modelPath)
			if err != nil {
				return fmt.Errorf("reading model: %w", err)
			}
			dmnModel, err := dmnxml.Read(xmlBytes)
			if err != nil {
				return fmt.Errorf("loading model: %w", err)
			}

			eng := engine.New()
			loadDiags := &diagnostics.Collector{}
			if err := eng.LoadModel(dmnModel, loadDiags.Sink()); err != nil {
				return fmt.Errorf("registering model: %w", err)
			}

			inputBytes, err := readInput(inputPath)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			root, err := jsoncodec.DecodeContext(inputBytes)
			if err != nil {
				return fmt.Errorf("decoding input: %w", err)
			}

			opts := engine.EvalOptions{StrictMode: strictMode, DebugOutput: debug}
			result, diags := eng.Evaluate(root, opts)

			out, err := jsoncodec.EncodeContext(result)
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if debug {
				for _, d := range loadDiags.Entries() {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%s] load: %s\n", d.Severity, d.Message)
				}
				for _, d := range diags {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s: %s\n", d.Severity, d.Decision, d.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to a DMN 1.5 XML model file")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Path to a JSON input context file, or - for stdin")
	cmd.Flags().BoolVar(&strictMode, "strict", false, "Elevate recoverable coercion failures to diagnostics")
	cmd.Flags().BoolVar(&debug, "debug", false, "Print the diagnostics channel to stderr")

	return cmd
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
