package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces (teams)",
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.UpsertWorkspace(cmd.Context(), rpc.WorkspaceMessage{ID: args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("workspace %s created (operation %s)\n", args[0], opID)
		return nil
	},
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.DeleteWorkspace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("workspace %s deleted (operation %s)\n", args[0], opID)
		return nil
	},
}

var workspaceGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := apiClient.GetWorkspace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(w.ID)
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListWorkspaces(cmd.Context())
		if err != nil {
			return err
		}
		for _, w := range list {
			fmt.Println(w.ID)
		}
		return nil
	},
}

func init() {
	workspaceCmd.AddCommand(workspaceCreateCmd, workspaceDeleteCmd, workspaceGetCmd, workspaceListCmd)
}
