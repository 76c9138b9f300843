// Command rslvadmin is the administrative CLI for the RSLV catalog:
// initialize the schema, add/update/delete PidDefinition rows, and browse
// the catalog's schemes/prefixes/values/uniqs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CDLUC3/rslv-go/internal/catalog"
)

// logLevel holds the --log-level flag value. No command reads it, so it
// does not change any output.
var logLevel string

func main() {
	rootCmd := &cobra.Command{
		Use:           "rslvadmin",
		Short:         "Administer the RSLV identifier-resolution catalog",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log verbosity: debug, info, warn, error")

	var dbPath string
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", envOr("RSLV_DB_CONNECTION_STRING", "rslv.db"), "catalog database path")

	rootCmd.AddCommand(
		newInitializeCmd(&dbPath),
		newAddCmd(&dbPath),
		newAddJSONCmd(&dbPath),
		newGetCmd(&dbPath),
		newDeleteCmd(&dbPath),
		newSchemesCmd(&dbPath),
		newPrefixesCmd(&dbPath),
		newValuesCmd(&dbPath),
		newUniqsCmd(&dbPath),
		newMatchCmd(&dbPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// openCatalog opens and migrates the catalog database at dbPath, returning
// a *catalog.Catalog plus a closer that also releases the underlying *sql.DB.
func openCatalog(dbPath string) (*catalog.Catalog, func(), error) {
	db, err := catalog.OpenDB(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open db %s: %w", dbPath, err)
	}
	if err := catalog.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate db %s: %w", dbPath, err)
	}
	store := catalog.NewStore(db)
	cat, err := catalog.NewCatalog(store)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("build catalog: %w", err)
	}
	return cat, func() { cat.Close(); db.Close() }, nil
}
