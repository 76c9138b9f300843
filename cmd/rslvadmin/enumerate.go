package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemesCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schemes",
		Short: "List every distinct scheme in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()
			schemes, err := cat.ListSchemes()
			if err != nil {
				return err
			}
			return printLines(cmd, schemes)
		},
	}
}

func newPrefixesCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "prefixes <scheme>",
		Short: "List every distinct prefix defined under scheme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()
			prefixes, err := cat.ListPrefixes(args[0])
			if err != nil {
				return err
			}
			return printLines(cmd, prefixes)
		},
	}
}

func newValuesCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "values <scheme> <prefix>",
		Short: "List every distinct value defined under (scheme, prefix)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()
			values, err := cat.ListValues(args[0], args[1])
			if err != nil {
				return err
			}
			return printLines(cmd, values)
		},
	}
}

func newUniqsCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "uniqs",
		Short: "List every uniq key in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()
			uniqs, err := cat.ListUniqs()
			if err != nil {
				return err
			}
			return printLines(cmd, uniqs)
		},
	}
}

func printLines(cmd *cobra.Command, lines []string) error {
	for _, l := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), l)
	}
	return nil
}
