package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Manage workloads",
}

var (
	workloadCreateID       string
	workloadCreateTeam     string
	workloadCreateTemplate string
	workloadListTeam       string
)

var workloadCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or update a workload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.UpsertWorkload(cmd.Context(), rpc.WorkloadMessage{
			ID:         workloadCreateID,
			Name:       args[0],
			TeamID:     workloadCreateTeam,
			TemplateID: workloadCreateTemplate,
		})
		if err != nil {
			return err
		}
		fmt.Printf("workload %s created (operation %s)\n", args[0], opID)
		return nil
	},
}

var workloadDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.DeleteWorkload(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("workload %s deleted (operation %s)\n", args[0], opID)
		return nil
	},
}

var workloadGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a workload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := apiClient.GetWorkload(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\tteam=%s\ttemplate=%s\n", w.ID, w.Name, w.TeamID, w.TemplateID)
		return nil
	},
}

var workloadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListWorkloads(cmd.Context(), workloadListTeam)
		if err != nil {
			return err
		}
		for _, w := range list {
			fmt.Printf("%s\t%s\tteam=%s\ttemplate=%s\n", w.ID, w.Name, w.TeamID, w.TemplateID)
		}
		return nil
	},
}

func init() {
	workloadCreateCmd.Flags().StringVar(&workloadCreateID, "id", "", "Workload id (generated if omitted)")
	workloadCreateCmd.Flags().StringVar(&workloadCreateTeam, "team", "", "Owning workspace (team) id")
	workloadCreateCmd.Flags().StringVar(&workloadCreateTemplate, "template", "", "Default template id")
	_ = workloadCreateCmd.MarkFlagRequired("team")
	_ = workloadCreateCmd.MarkFlagRequired("template")

	workloadListCmd.Flags().StringVar(&workloadListTeam, "team", "", "Filter by owning workspace (team) id")

	workloadCmd.AddCommand(workloadCreateCmd, workloadDeleteCmd, workloadGetCmd, workloadListCmd)
}
