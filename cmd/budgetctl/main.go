// Package main is the entry point for budgetctl, the budget optimizer CLI.
package main

import "github.com/aristath/budgetopt/internal/cli"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.Execute(version)
}
