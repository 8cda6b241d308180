package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

// assignmentCmd is read-only: Assignments are a derived entity computed by
// the reconciler, never created or deleted through the API.
var assignmentCmd = &cobra.Command{
	Use:   "assignment",
	Short: "Inspect assignments",
}

var (
	assignmentListDeployment string
	assignmentListHost       string
)

var assignmentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := apiClient.GetAssignment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAssignment(a)
		return nil
	},
}

var assignmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListAssignments(cmd.Context(), assignmentListDeployment, assignmentListHost)
		if err != nil {
			return err
		}
		for _, a := range list {
			printAssignment(a)
		}
		return nil
	},
}

func printAssignment(a rpc.AssignmentMessage) {
	fmt.Printf("%s\tdeployment=%s\thost=%s\n", a.ID, a.DeploymentID, a.HostID)
}

func init() {
	assignmentListCmd.Flags().StringVar(&assignmentListDeployment, "deployment", "", "Filter by deployment id")
	assignmentListCmd.Flags().StringVar(&assignmentListHost, "host", "", "Filter by host id")

	assignmentCmd.AddCommand(assignmentGetCmd, assignmentListCmd)
}
