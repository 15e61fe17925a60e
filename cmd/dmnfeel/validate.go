package main

import (
	"fmt"
	"os"

	"github.com/dmnfeel/engine/dmnxml"
	"github.com/dmnfeel/engine/engine"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a DMN model and report any structural issues",
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
			if err := eng.LoadModel(dmnModel, nil); err != nil {
				return fmt.Errorf("registering model: %w", err)
			}

			issues := eng.ValidateModels()
			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "model is valid")
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue)
			}
			return fmt.Errorf("%d validation issue(s) found", len(issues))
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Path to a DMN 1.5 XML model file")
	return cmd
}
