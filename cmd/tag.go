package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rss-digest/pkg/catalog"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	Aliases: []string{"tags"},
	Short:   "Manage tags and their keywords",
	Long: `Tags mark articles whose title or description contains one of their keywords.
Matching is a case-insensitive substring search. Keywords are given as a
comma-separated list, at most 20 per tag.`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keywords, _ := cmd.Flags().GetString("keywords")
		return withCatalog(cmd, func(svc *catalog.Service) error {
			tag, err := svc.CreateTag(cmd.Context(), catalog.CreateTagRequest{
				Name:     args[0],
				Keywords: catalog.ParseKeywords(keywords),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tag)
		})
	},
}

var tagKeywordsCmd = &cobra.Command{
	Use:   "keywords <id> <comma-separated keywords>",
	Short: "Replace all keywords of a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			keywords, err := svc.UpdateTagKeywords(cmd.Context(), catalog.UpdateTagKeywordsRequest{
				TagID:    args[0],
				Keywords: catalog.ParseKeywords(args[1]),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), keywords)
		})
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tags with keywords",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			tags, err := svc.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tags)
		})
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a tag",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			if err := svc.DeleteTag(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tag %s deleted\n", args[0])
			return nil
		})
	},
}

func tagToggleCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Set a tag's active flag to %t", active),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(svc *catalog.Service) error {
				tag, err := svc.SetTagActive(cmd.Context(), args[0], active)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tag)
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagAddCmd.Flags().String("keywords", "", "comma-separated keywords")
	tagCmd.AddCommand(tagAddCmd, tagKeywordsCmd, tagListCmd, tagRemoveCmd,
		tagToggleCmd("enable", true), tagToggleCmd("disable", false))
}
