package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check a file of expressions, one per line",
		Long: `Check every expression of a file, one per line. Blank lines and lines
starting with # are skipped. Use - to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newParser(rootOpts, cmd)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			lines, err := readExpressions(in)
			if err != nil {
				return err
			}

			results := make([]Result, 0, len(lines))
			invalid := 0
			for _, l := range lines {
				q, err := p.ParseContext(cmd.Context(), l.text)
				if err != nil {
					invalid++
				}
				results = append(results, newResult(l.number, l.text, q, err))
			}

			if _, err := writeResults(cmd.OutOrStdout(), rootOpts.Format, results); err != nil {
				return err
			}
			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d", ErrInvalidExpression, invalid, len(results))
			}
			return nil
		},
	}
	return cmd
}

type expressionLine struct {
	number int
	text   string
}

func readExpressions(r io.Reader) ([]expressionLine, error) {
	var out []expressionLine
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		out = append(out, expressionLine{number: n, text: text})
	}
	return out, sc.Err()
}
