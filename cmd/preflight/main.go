package main

import (
	"os"

	"github.com/cobaltsec/preflight/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
