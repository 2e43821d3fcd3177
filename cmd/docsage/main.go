package main

import (
	"os"

	"github.com/docsage/docsage/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
