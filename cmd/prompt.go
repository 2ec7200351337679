package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rss-digest/pkg/catalog"
)

var promptCmd = &cobra.Command{
	Use:     "prompt",
	Aliases: []string{"prompts"},
	Short:   "Manage share-draft prompt templates",
	Long: `Prompt templates may reference {{title}}, {{description}}, {{link}},
{{publishedAt}} and {{matchedTags}}. At most one prompt is the default.`,
}

var promptAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a prompt from --template or --file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template, _ := cmd.Flags().GetString("template")
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}
			template = string(raw)
		}
		isDefault, _ := cmd.Flags().GetBool("default")

		return withCatalog(cmd, func(svc *catalog.Service) error {
			prompt, err := svc.CreatePrompt(cmd.Context(), catalog.CreatePromptRequest{
				Name:      args[0],
				Template:  template,
				IsDefault: isDefault,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), prompt)
		})
	},
}

var promptUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the name, template or default flag of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var req catalog.UpdatePromptRequest
		if flags.Changed("name") {
			name, _ := flags.GetString("name")
			req.Name = &name
		}
		if flags.Changed("template") {
			template, _ := flags.GetString("template")
			req.Template = &template
		}
		if flags.Changed("default") {
			isDefault, _ := flags.GetBool("default")
			req.IsDefault = &isDefault
		}

		return withCatalog(cmd, func(svc *catalog.Service) error {
			prompt, err := svc.UpdatePrompt(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), prompt)
		})
	},
}

var promptListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List prompts, default first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			prompts, err := svc.ListPrompts(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), prompts)
		})
	},
}

var promptRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a prompt",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			if err := svc.DeletePrompt(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "prompt %s deleted\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)

	promptAddCmd.Flags().String("template", "", "template text")
	promptAddCmd.Flags().String("file", "", "read the template from this file")
	promptAddCmd.Flags().Bool("default", false, "make this the default prompt")

	promptUpdateCmd.Flags().String("name", "", "new name")
	promptUpdateCmd.Flags().String("template", "", "new template text")
	promptUpdateCmd.Flags().Bool("default", false, "set or clear the default flag")

	promptCmd.AddCommand(promptAddCmd, promptUpdateCmd, promptListCmd, promptRemoveCmd)
}
