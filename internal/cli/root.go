// Package cli implements the eql command line tool.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nlstn/go-eql"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Schema  string
	Format  string // "text" | "json"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the eql tool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "eql",
		Short: "Parse and check EntityQuery Language expressions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Schema, "schema", "s", "", "YAML schema declaring the entity properties")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log parser diagnostics to stderr")

	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// newParser builds a parser for the schema named by opts, if any.
func newParser(opts *RootOptions, cmd *cobra.Command) (*eql.Parser, error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	parserOpts := []eql.Option{eql.WithLogger(logger)}
	if opts.Schema != "" {
		schema, err := LoadSchemaFile(opts.Schema)
		if err != nil {
			return nil, err
		}
		parserOpts = append(parserOpts, eql.WithSchema(schema))
	}
	return eql.NewParser(parserOpts...), nil
}
