// Package main provides the evg command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/evergreen-mcp-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
