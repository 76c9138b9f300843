package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CDLUC3/rslv-go/internal/resolver"
)

// matchReport is the dry-run output of "rslvadmin match": the parsed
// parts, the matched definition's uniq (if any), and the templates it
// would expand to, without starting the HTTP server.
type matchReport struct {
	PID       string `json:"pid"`
	Scheme    string `json:"scheme"`
	Prefix    string `json:"prefix"`
	Value     string `json:"value"`
	Suffix    string `json:"suffix"`
	Matched   bool   `json:"matched"`
	Uniq      string `json:"uniq,omitempty"`
	Target    string `json:"target,omitempty"`
	Canonical string `json:"canonical,omitempty"`
}

func newMatchCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "match <identifier>",
		Short: "Dry-run catalog resolution for an identifier without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()

			m, err := resolver.Parse(args[0], cat, true)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}

			report := matchReport{
				PID:    m.Parts.PID,
				Scheme: m.Parts.Scheme,
				Prefix: m.Parts.Prefix,
				Value:  m.Parts.Value,
				Suffix: m.Parts.Suffix,
			}
			if m.Definition != nil {
				report.Matched = true
				report.Uniq = m.Definition.Uniq
				partsMap := m.Parts.Parts()
				if report.Target, err = resolver.ExpandTarget(m.Definition, partsMap); err != nil {
					return fmt.Errorf("expand target: %w", err)
				}
				if report.Canonical, err = resolver.ExpandCanonical(m.Definition, partsMap); err != nil {
					return fmt.Errorf("expand canonical: %w", err)
				}
			}
			return printJSON(cmd, report)
		},
	}
}
