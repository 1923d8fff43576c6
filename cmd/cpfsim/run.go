package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/report"
	"github.com/antscrawling/cpfsim/internal/rules"
)

func (c *cli) runCmd() *cobra.Command {
	var (
		rulesPath string
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and print its ledger rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := report.ForName(format)
			if err != nil {
				return err
			}

			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.backend.Close()

			if rulesPath == "" {
				rulesPath = s.cfg.RulesPath
			}
			table, err := rules.Load(rulesPath)
			if err != nil {
				return err
			}

			out, err := s.simulation.Run(cmd.Context(), table)
			if err != nil {
				return err
			}
			rows, err := s.ledger.ListRows(cmd.Context(), out.Run.ID)
			if err != nil {
				return err
			}

			s.log.Info().
				Str("run_id", out.Run.ID).
				Str("status", string(out.Run.Status)).
				Int("rows", len(rows)).
				Int("missing_keys", len(out.Missing)).
				Msg("simulation finished")

			return c.render(formatter, &report.Report{Run: out.Run, Book: out.Book, Rows: rows}, output)
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Rule table (YAML or JSON); defaults to RULES_PATH")
	cmd.Flags().StringVarP(&format, "format", "f", "console", fmt.Sprintf("Output format %v", report.Names()))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file instead of stdout")

	return cmd
}

func (c *cli) rowsCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "rows <run-id>",
		Short: "Print the ledger rows of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := report.ForName(format)
			if err != nil {
				return err
			}
			if err := domain.ValidateRunID(args[0]); err != nil {
				return err
			}

			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.backend.Close()

			run, err := s.ledger.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows, err := s.ledger.ListRows(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			return c.render(formatter, &report.Report{Run: run, Rows: rows}, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "console", fmt.Sprintf("Output format %v", report.Names()))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file instead of stdout")

	return cmd
}

func (c *cli) render(f report.Formatter, r *report.Report, output string) error {
	data, err := f.Format(r)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = c.out.Write(data)
		return err
	}

	if err := os.WriteFile(filepath.Clean(output), data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(c.out, "Report written to %s\n", output)
	return nil
}
