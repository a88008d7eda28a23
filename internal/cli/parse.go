package cli

import (
	"github.com/spf13/cobra"

	"github.com/nlstn/go-eql"
)

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "parse <expression>",
		Short: "Parse an expression and print its normalized form",
		Long: `Parse an EQL expression and print it as normalized EQL.

Without --schema every property is accepted. With --schema properties,
operators and values are validated and arguments converted to the declared
types. --raw skips validation and translation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser(rootOpts, cmd)
			if err != nil {
				return err
			}

			var q *eql.Query
			if raw {
				q, err = p.ParseRaw(args[0])
			} else {
				q, err = p.ParseContext(cmd.Context(), args[0])
			}

			valid, werr := writeResults(cmd.OutOrStdout(), rootOpts.Format, []Result{newResult(0, args[0], q, err)})
			if werr != nil {
				return werr
			}
			if !valid {
				return ErrInvalidExpression
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "parse without validating or translating")
	return cmd
}
