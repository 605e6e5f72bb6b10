package main

import (
	"fmt"
	"os"

	"filephile/internal/cli"
)

// Lets `go install filephile@latest` and `go run .` build the same binary
// as cmd/filephile.
func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
