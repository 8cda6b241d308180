package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage config entries",
}

var (
	configCreateID         string
	configCreateWorkspace  string
	configCreateWorkload   string
	configCreateDeployment string
	configCreateValueType  string
	configListOwner        string
)

var configCreateCmd = &cobra.Command{
	Use:   "create <key> <value>",
	Short: "Create or update a config entry",
	Long: `Create or update a config entry.

Exactly one of --workspace, --workload, or --deployment may be given to
scope the entry; omit all three to create a global entry.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := configOwningModel()
		if err != nil {
			return err
		}
		opID, err := apiClient.UpsertConfig(cmd.Context(), rpc.ConfigMessage{
			ID:          configCreateID,
			Key:         args[0],
			Value:       args[1],
			OwningModel: owner,
			ValueType:   configCreateValueType,
		})
		if err != nil {
			return err
		}
		fmt.Printf("config %s created (operation %s)\n", args[0], opID)
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a config entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.DeleteConfig(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("config %s deleted (operation %s)\n", args[0], opID)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a config entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient.GetConfig(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printConfig(c)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List config entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListConfigs(cmd.Context(), configListOwner)
		if err != nil {
			return err
		}
		for _, c := range list {
			printConfig(c)
		}
		return nil
	},
}

// configOwningModel builds the "kind:id"/"global" wire string from the
// mutually exclusive --workspace/--workload/--deployment flags.
func configOwningModel() (string, error) {
	set := 0
	var owner string
	if configCreateWorkspace != "" {
		set++
		owner = "workspace:" + configCreateWorkspace
	}
	if configCreateWorkload != "" {
		set++
		owner = "workload:" + configCreateWorkload
	}
	if configCreateDeployment != "" {
		set++
		owner = "deployment:" + configCreateDeployment
	}
	if set > 1 {
		return "", fmt.Errorf("only one of --workspace, --workload, --deployment may be set")
	}
	if set == 0 {
		return "global", nil
	}
	return owner, nil
}

func printConfig(c rpc.ConfigMessage) {
	fmt.Printf("%s\t%s=%s\towner=%s\ttype=%s\n", c.ID, c.Key, c.Value, c.OwningModel, c.ValueType)
}

func init() {
	configCreateCmd.Flags().StringVar(&configCreateID, "id", "", "Config id (generated if omitted)")
	configCreateCmd.Flags().StringVar(&configCreateWorkspace, "workspace", "", "Scope to a workspace id")
	configCreateCmd.Flags().StringVar(&configCreateWorkload, "workload", "", "Scope to a workload id")
	configCreateCmd.Flags().StringVar(&configCreateDeployment, "deployment", "", "Scope to a deployment id")
	configCreateCmd.Flags().StringVar(&configCreateValueType, "value-type", "string", "One of string, keyvalue, keyvaluelist")

	configListCmd.Flags().StringVar(&configListOwner, "owner", "", `Filter by owningModel ("global" or "<kind>:<id>")`)

	configCmd.AddCommand(configCreateCmd, configDeleteCmd, configGetCmd, configListCmd)
}
