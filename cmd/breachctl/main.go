// Package main is the entry point for the breachwatch CLI tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/breachwatch/cmd/breachctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
