// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/spotifykit/internal/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(c), newConfigDumpCmd(c))
	return cmd
}

func newConfigValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the effective configuration (defaults + file + env)",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.resolveConfigPath()
			if _, err := config.Load(path); err != nil {
				return &usageError{err: err}
			}
			source := path
			if source == "" {
				source = "environment and defaults"
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ configuration from %s is valid\n", source)
			return err
		},
	}
}

func newConfigDumpCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with secrets redacted",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.resolveConfigPath())
			if err != nil {
				return &usageError{err: err}
			}
			redacted := cfg.Redacted()

			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "yaml", "yml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(redacted); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(redacted); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				return nil
			default:
				return usagef("unsupported format %q (use yaml or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
