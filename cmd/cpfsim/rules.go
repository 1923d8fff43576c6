package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antscrawling/cpfsim/internal/rules"
)

func (c *cli) rulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Rule table operations",
	}

	var (
		rulesPath string
		resolve   bool
	)

	flattenCmd := &cobra.Command{
		Use:   "flatten",
		Short: "Print the rule table as sorted dotted keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rulesPath == "" {
				cfg, _, err := c.config()
				if err != nil {
					return err
				}
				rulesPath = cfg.RulesPath
			}

			table, err := rules.Load(rulesPath)
			if err != nil {
				return err
			}

			for _, key := range table.Keys() {
				fmt.Fprintf(c.out, "%s = %s\n", key, table.Format(key))
			}

			if !resolve {
				return nil
			}

			_, log, err := c.config()
			if err != nil {
				return err
			}
			result, err := rules.Resolve(table, log)
			if err != nil {
				return err
			}
			for _, key := range result.Missing {
				fmt.Fprintf(c.out, "# missing: %s\n", key)
			}
			return nil
		},
	}

	flattenCmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Rule table (YAML or JSON); defaults to RULES_PATH")
	flattenCmd.Flags().BoolVar(&resolve, "resolve", false, "Also list keys the simulation would fall back to defaults for")

	rulesCmd.AddCommand(flattenCmd)
	return rulesCmd
}
