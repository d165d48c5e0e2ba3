// Package main is the entry point for the ductnet CLI.
package main

import (
	"fmt"
	"os"

	"ductnet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
