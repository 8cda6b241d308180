package main

import (
	"os"

	"github.com/orchestrator-core/controlplane/internal/cli"
)

func main() {
	if err := cli.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
