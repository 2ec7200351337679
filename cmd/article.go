package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rss-digest/pkg/catalog"
)

var articleCmd = &cobra.Command{
	Use:     "article",
	Aliases: []string{"articles"},
	Short:   "Browse and curate stored articles",
}

var articleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List a page of articles",
	Long: `List articles ordered by publication date, newest first.

Examples:
  rss-digest article list                       # visible articles, page 1
  rss-digest article list --status excluded     # hidden articles
  rss-digest article list --favorites --page 2
  rss-digest article list --search kubernetes --tag <tag-id>`,
	Args: cobra.NoArgs,
	RunE: runArticleList,
}

func init() {
	rootCmd.AddCommand(articleCmd)

	articleListCmd.Flags().Int("page", 1, "page number, starting at 1")
	articleListCmd.Flags().Int("limit", catalog.DefaultPageSize, "articles per page (1-100)")
	articleListCmd.Flags().String("status", "visible", "visible or excluded")
	articleListCmd.Flags().String("tag", "", "only articles linked to this tag ID")
	articleListCmd.Flags().String("search", "", "case-insensitive match on title and description")
	articleListCmd.Flags().Bool("favorites", false, "only favorited articles")

	articleCmd.AddCommand(articleListCmd,
		articleStatusCmd("exclude", "Hide an article from the main feed"),
		articleStatusCmd("restore", "Put an excluded article back into the main feed"),
		articleFavoriteCmd)
}

func runArticleList(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var req catalog.ListArticlesRequest
	req.Page, _ = flags.GetInt("page")
	req.Limit, _ = flags.GetInt("limit")
	req.Status, _ = flags.GetString("status")
	req.TagID, _ = flags.GetString("tag")
	req.Search, _ = flags.GetString("search")
	req.FavoritesOnly, _ = flags.GetBool("favorites")

	return withCatalog(cmd, func(svc *catalog.Service) error {
		page, err := svc.ListArticles(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), page)
	})
}

func articleStatusCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(svc *catalog.Service) error {
				update := svc.RestoreArticle
				if use == "exclude" {
					update = svc.ExcludeArticle
				}
				article, err := update(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), article)
			})
		},
	}
}

var articleFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle the favorite mark; favorites survive retention sweeps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			on, err := svc.ToggleFavorite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "removed from"
			if on {
				state = "added to"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "article %s %s favorites\n", args[0], state)
			return nil
		})
	},
}
