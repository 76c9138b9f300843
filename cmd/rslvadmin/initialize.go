package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newInitializeCmd(dbPath *string) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Create the catalog schema and write the metadata singleton",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()

			now := time.Now().UnixNano()
			if err := cat.Initialize(description, now); err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			if err := cat.RefreshMetadata(now); err != nil {
				return fmt.Errorf("refresh metadata: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized catalog at %s\n", *dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "catalog description")
	return cmd
}
