// Package main is the entry point for the assoc-ledger CLI.
package main

import (
	"os"

	"github.com/progmawarid-dot/association-najah-ass/cmd/assoc-ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
