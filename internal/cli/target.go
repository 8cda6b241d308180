package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage targets",
}

var (
	targetCreateID     string
	targetCreateLabels []string
)

var targetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or update a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := parseLabels(targetCreateLabels)
		if err != nil {
			return err
		}
		opID, err := apiClient.UpsertTarget(cmd.Context(), rpc.TargetMessage{ID: targetCreateID, Labels: labels})
		if err != nil {
			return err
		}
		fmt.Printf("target created (operation %s)\n", opID)
		return nil
	},
}

var targetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.DeleteTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("target %s deleted (operation %s)\n", args[0], opID)
		return nil
	},
}

var targetGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := apiClient.GetTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%v\n", t.ID, t.Labels)
		return nil
	},
}

var targetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListTargets(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range list {
			fmt.Printf("%s\t%v\n", t.ID, t.Labels)
		}
		return nil
	},
}

func init() {
	targetCreateCmd.Flags().StringVar(&targetCreateID, "id", "", "Target id (generated if omitted)")
	targetCreateCmd.Flags().StringArrayVar(&targetCreateLabels, "label", nil, "Selector label key=value (repeatable)")

	targetCmd.AddCommand(targetCreateCmd, targetDeleteCmd, targetGetCmd, targetListCmd)
}
