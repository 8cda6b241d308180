package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show orchestratorctl's version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("orchestratorctl version %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildDate)
	},
}
