// Package cli implements orchestratorctl's command tree: one noun per
// entity in the data model, each with get/list subcommands and, except
// for the read-only assignment noun, create/delete, talking to cmd/api
// over internal/rpc/client.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc/client"
)

var apiClient *client.Client

var (
	baseURLFlag string
	tokenFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "orchestratorctl",
	Short: "Control the multi-cluster workload orchestrator",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		baseURL := baseURLFlag
		if baseURL == "" {
			baseURL = os.Getenv("ORCHESTRATOR_API_BASE_URL")
		}
		if baseURL == "" {
			baseURL = client.DefaultBaseURL
		}
		token := tokenFlag
		if token == "" {
			token = os.Getenv("ORCHESTRATOR_API_TOKEN")
		}
		if token == "" {
			token, _ = loadToken()
		}
		apiClient = client.NewClient(baseURL, token)
	},
}

// Root returns the orchestratorctl command tree.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "api-base-url", "", "Orchestrator API base URL (default ORCHESTRATOR_API_BASE_URL or "+client.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Bearer token (default ORCHESTRATOR_API_TOKEN or the saved login token)")

	rootCmd.AddCommand(
		versionCmd,
		loginCmd,
		workspaceCmd,
		templateCmd,
		workloadCmd,
		targetCmd,
		hostCmd,
		deploymentCmd,
		assignmentCmd,
		configCmd,
	)
}
