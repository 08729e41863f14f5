// Package main is the entry point for the searchc CLI tool.
package main

import (
	"os"

	"github.com/roach88/searchc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
