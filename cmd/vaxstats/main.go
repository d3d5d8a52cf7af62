// main is the entry point of the vaxstats CLI.
package main

import (
	"fmt"
	"os"

	"github.com/oasci/vaxstats/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
