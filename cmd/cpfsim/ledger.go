package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antscrawling/cpfsim/internal/adapter/http/dto"
	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/usecase"
)

func (c *cli) entriesCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "entries <run-id>",
		Short: "Print the ledger entries of a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidateRunID(args[0]); err != nil {
				return err
			}

			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.backend.Close()

			entries, err := s.ledger.ListEntries(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}

			return c.printJSON(dto.EntriesFromDomain(entries))
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "Only entries of this period key (YYYY-MM or YYYY-MM-cpf)")

	return cmd
}

func (c *cli) consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency <run-id>",
		Short: "Replay a run's entries and check every stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidateRunID(args[0]); err != nil {
				return err
			}

			s, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.backend.Close()

			report, err := s.ledger.CheckConsistency(cmd.Context(), args[0])
			if err != nil && !errors.Is(err, usecase.ErrInconsistentLedger) {
				return err
			}

			if report.Consistent() {
				fmt.Fprintf(c.out, "Consistency check PASSED\n")
			} else {
				fmt.Fprintf(c.out, "Consistency check FAILED\n")
			}
			fmt.Fprintf(c.out, "Entries: %d\nRows: %d\n", report.Entries, report.Rows)
			for _, d := range report.Discrepancies {
				fmt.Fprintf(c.out, "  - %s\n", d)
			}

			return err
		},
	}
}

func (c *cli) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}
