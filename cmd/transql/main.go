// Package main provides the CLI for the transql SQL translator.
package main

import (
	"os"

	"github.com/leapstack-labs/transql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
