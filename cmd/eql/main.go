// Command eql parses and checks EntityQuery Language expressions.
package main

import (
	"fmt"
	"os"

	"github.com/nlstn/go-eql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "eql:", err)
		os.Exit(1)
	}
}
