package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/CDLUC3/rslv-go/internal/model"
)

type defFlags struct {
	scheme     string
	prefix     string
	value      string
	target     string
	canonical  string
	httpCode   int
	synonymFor string
	properties []string
}

func (f defFlags) toDefinition() (model.PidDefinition, error) {
	def := model.PidDefinition{
		Scheme:    strings.ToLower(strings.Trim(f.scheme, ": ")),
		Prefix:    strings.Trim(f.prefix, "/ "),
		Value:     strings.TrimSpace(f.value),
		Canonical: f.canonical,
		HTTPCode:  f.httpCode,
	}
	if f.target != "" {
		t := f.target
		def.Target = &t
	}
	if f.synonymFor != "" {
		s := f.synonymFor
		def.SynonymFor = &s
	}
	if len(f.properties) > 0 {
		props := make(map[string]any, len(f.properties))
		for _, kv := range f.properties {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return def, fmt.Errorf("--property must be key=value, got %q", kv)
			}
			props[k] = v
		}
		def.Properties = props
	}
	return def, nil
}

// registerDefFlags registers the --scheme/--prefix/--value/... flag set
// shared by "add" onto fs, typed directly against *pflag.FlagSet (rather
// than the narrower view cmd.Flags() exposes) since every definition
// attribute is a repeatable/typed flag pflag models directly.
func registerDefFlags(fs *pflag.FlagSet, f *defFlags) {
	fs.StringVar(&f.scheme, "scheme", "", "scheme (required)")
	fs.StringVar(&f.prefix, "prefix", "", "prefix")
	fs.StringVar(&f.value, "value", "", "value prefix to match")
	fs.StringVar(&f.target, "target", "", "target redirect template")
	fs.StringVar(&f.canonical, "canonical", "${pid}", "canonical form template")
	fs.IntVar(&f.httpCode, "http-code", 302, "redirect status code [301,308]")
	fs.StringVar(&f.synonymFor, "synonym-for", "", "identifier this definition is a synonym for")
	fs.StringSliceVar(&f.properties, "property", nil, "key=value property, repeatable")
}

func newAddCmd(dbPath *string) *cobra.Command {
	var f defFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new PidDefinition",
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := f.toDefinition()
			if err != nil {
				return err
			}
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()

			now := time.Now().UnixNano()
			if err := cat.Add(def, now); err != nil {
				return fmt.Errorf("add: %w", err)
			}
			if err := cat.RefreshMetadata(now); err != nil {
				return fmt.Errorf("refresh metadata: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", model.ComputeUniq(def.Scheme, def.Prefix, def.Value))
			return nil
		},
	}
	registerDefFlags(cmd.Flags(), &f)
	_ = cmd.MarkFlagRequired("scheme")
	return cmd
}

func newAddJSONCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-json <file.json|->",
		Short: "Add or update PidDefinitions from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			var defs []model.PidDefinition
			if err := json.Unmarshal(data, &defs); err != nil {
				return fmt.Errorf("parse json: %w", err)
			}

			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()

			now := time.Now().UnixNano()
			for _, def := range defs {
				if err := cat.AddOrUpdate(def, now); err != nil {
					return fmt.Errorf("add-or-update %s: %w", model.ComputeUniq(def.Scheme, def.Prefix, def.Value), err)
				}
			}
			if err := cat.RefreshMetadata(now); err != nil {
				return fmt.Errorf("refresh metadata: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d definitions\n", len(defs))
			return nil
		},
	}
	return cmd
}

func newGetCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <uniq>",
		Short: "Print a PidDefinition by its uniq key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()

			def, err := cat.GetByUniq(args[0])
			if err != nil {
				return fmt.Errorf("get: %w", err)
			}
			return printJSON(cmd, def)
		},
	}
	return cmd
}

func newDeleteCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <uniq>",
		Short: "Delete a PidDefinition by its uniq key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, closer, err := openCatalog(*dbPath)
			if err != nil {
				return err
			}
			defer closer()

			if err := cat.Delete(args[0]); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			now := time.Now().UnixNano()
			if err := cat.RefreshMetadata(now); err != nil {
				return fmt.Errorf("refresh metadata: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func readInput(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
