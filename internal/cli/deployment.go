package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

var deploymentCmd = &cobra.Command{
	Use:   "deployment",
	Short: "Manage deployments",
}

var (
	deploymentCreateID         string
	deploymentCreateWorkload   string
	deploymentCreateTarget     string
	deploymentCreateTemplate   string
	deploymentCreateHostCount  string
	deploymentListWorkload     string
	deploymentListTarget       string
	deploymentListTemplate     string
)

var deploymentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or update a deployment",
	Long: `Create or update a deployment.

--hosts accepts either "all" (one Assignment per Host matching the
target's label selector) or a non-negative integer (an exact Assignment
count).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.UpsertDeployment(cmd.Context(), rpc.DeploymentMessage{
			ID:         deploymentCreateID,
			Name:       args[0],
			WorkloadID: deploymentCreateWorkload,
			TargetID:   deploymentCreateTarget,
			TemplateID: deploymentCreateTemplate,
			HostCount:  deploymentCreateHostCount,
		})
		if err != nil {
			return err
		}
		fmt.Printf("deployment %s created (operation %s)\n", args[0], opID)
		return nil
	},
}

var deploymentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a deployment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.DeleteDeployment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("deployment %s deleted (operation %s)\n", args[0], opID)
		return nil
	},
}

var deploymentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a deployment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := apiClient.GetDeployment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printDeployment(d)
		return nil
	},
}

var deploymentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deployments",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListDeployments(cmd.Context(), deploymentListWorkload, deploymentListTarget, deploymentListTemplate)
		if err != nil {
			return err
		}
		for _, d := range list {
			printDeployment(d)
		}
		return nil
	},
}

func printDeployment(d rpc.DeploymentMessage) {
	fmt.Printf("%s\t%s\tworkload=%s\ttarget=%s\ttemplate=%s\thosts=%s\n",
		d.ID, d.Name, d.WorkloadID, d.TargetID, d.TemplateID, d.HostCount)
}

func init() {
	deploymentCreateCmd.Flags().StringVar(&deploymentCreateID, "id", "", "Deployment id (generated if omitted)")
	deploymentCreateCmd.Flags().StringVar(&deploymentCreateWorkload, "workload", "", "Owning workload id")
	deploymentCreateCmd.Flags().StringVar(&deploymentCreateTarget, "target", "", "Target id")
	deploymentCreateCmd.Flags().StringVar(&deploymentCreateTemplate, "template", "", "Template override id (defaults to the workload's template)")
	deploymentCreateCmd.Flags().StringVar(&deploymentCreateHostCount, "hosts", "all", `Number of hosts to assign, or "all"`)
	_ = deploymentCreateCmd.MarkFlagRequired("workload")
	_ = deploymentCreateCmd.MarkFlagRequired("target")

	deploymentListCmd.Flags().StringVar(&deploymentListWorkload, "workload", "", "Filter by owning workload id")
	deploymentListCmd.Flags().StringVar(&deploymentListTarget, "target", "", "Filter by target id")
	deploymentListCmd.Flags().StringVar(&deploymentListTemplate, "template", "", "Filter by template id")

	deploymentCmd.AddCommand(deploymentCreateCmd, deploymentDeleteCmd, deploymentGetCmd, deploymentListCmd)
}
