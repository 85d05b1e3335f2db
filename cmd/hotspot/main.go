package main

import (
	"fmt"
	"os"

	"github.com/AI2HU/hotspot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError("Error: "+err.Error()))
		os.Exit(1)
	}
}
