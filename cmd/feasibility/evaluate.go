package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/feasibility/assessment"
	"github.com/tailored-agentic-units/feasibility/feasibility"
)

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		bundleFile string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a pre-assembled assessment bundle",
		Long:  "Load an assessment bundle from a JSON or YAML file, score it, and list the reports it requires.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			bundle, err := loadBundle(bundleFile)
			if err != nil {
				return err
			}

			svc, err := feasibility.New(cfg, feasibility.WithLogger(root.logger))
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			defer svc.Close()

			res, err := svc.Evaluate(cmd.Context(), bundle)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			renderResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bundleFile, "file", "f", "", "Path to bundle file (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write the result as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadBundle(path string) (*assessment.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var b assessment.Bundle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &b)
	default:
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return &b, nil
}
