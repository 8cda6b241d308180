package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Manage hosts",
}

var (
	hostCreateID             string
	hostCreateLabels         []string
	hostCreateCPUCapacity    int32
	hostCreateMemoryCapacity int64
)

var hostCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or update a host",
	RunE: func(cmd *cobra.Command, args []string) error {
		labels, err := parseLabels(hostCreateLabels)
		if err != nil {
			return err
		}
		msg := rpc.HostMessage{ID: hostCreateID, Labels: labels}
		if cmd.Flags().Changed("cpu-capacity") {
			msg.CPUCapacity = &hostCreateCPUCapacity
		}
		if cmd.Flags().Changed("memory-capacity") {
			msg.MemoryCapacity = &hostCreateMemoryCapacity
		}
		opID, err := apiClient.UpsertHost(cmd.Context(), msg)
		if err != nil {
			return err
		}
		fmt.Printf("host created (operation %s)\n", opID)
		return nil
	},
}

var hostDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.DeleteHost(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("host %s deleted (operation %s)\n", args[0], opID)
		return nil
	},
}

var hostGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := apiClient.GetHost(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%v\n", h.ID, h.Labels)
		return nil
	},
}

var hostListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosts",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListHosts(cmd.Context())
		if err != nil {
			return err
		}
		for _, h := range list {
			fmt.Printf("%s\t%v\n", h.ID, h.Labels)
		}
		return nil
	},
}

func init() {
	hostCreateCmd.Flags().StringVar(&hostCreateID, "id", "", "Host id (generated if omitted)")
	hostCreateCmd.Flags().StringArrayVar(&hostCreateLabels, "label", nil, "Selector label key=value (repeatable)")
	hostCreateCmd.Flags().Int32Var(&hostCreateCPUCapacity, "cpu-capacity", 0, "CPU capacity")
	hostCreateCmd.Flags().Int64Var(&hostCreateMemoryCapacity, "memory-capacity", 0, "Memory capacity in bytes")

	hostCmd.AddCommand(hostCreateCmd, hostDeleteCmd, hostGetCmd, hostListCmd)
}
