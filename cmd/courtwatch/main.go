// Package main provides the entry point for the courtwatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/nikhilbhat/courtwatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
