package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orchestrator-core/controlplane/internal/rpc"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage templates",
}

var (
	templateCreateID         string
	templateCreateRepository string
	templateCreateGitRef     string
	templateCreatePath       string
)

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create or update a template",
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.UpsertTemplate(cmd.Context(), rpc.TemplateMessage{
			ID:         templateCreateID,
			Repository: templateCreateRepository,
			GitRef:     templateCreateGitRef,
			Path:       templateCreatePath,
		})
		if err != nil {
			return err
		}
		fmt.Printf("template created (operation %s)\n", opID)
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opID, err := apiClient.DeleteTemplate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("template %s deleted (operation %s)\n", args[0], opID)
		return nil
	},
}

var templateGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := apiClient.GetTemplate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s@%s\t%s\n", t.ID, t.Repository, t.GitRef, t.Path)
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := apiClient.ListTemplates(cmd.Context())
		if err != nil {
			return err
		}
		for _, t := range list {
			fmt.Printf("%s\t%s@%s\t%s\n", t.ID, t.Repository, t.GitRef, t.Path)
		}
		return nil
	},
}

func init() {
	templateCreateCmd.Flags().StringVar(&templateCreateID, "id", "", "Template id (generated if omitted)")
	templateCreateCmd.Flags().StringVar(&templateCreateRepository, "repository", "", "Git repository URL")
	templateCreateCmd.Flags().StringVar(&templateCreateGitRef, "git-ref", "", "Git ref to check out")
	templateCreateCmd.Flags().StringVar(&templateCreatePath, "path", "", "Path within the repository holding the manifests")
	_ = templateCreateCmd.MarkFlagRequired("repository")
	_ = templateCreateCmd.MarkFlagRequired("git-ref")

	templateCmd.AddCommand(templateCreateCmd, templateDeleteCmd, templateGetCmd, templateListCmd)
}
