package cmd

import (
	"github.com/spf13/cobra"

	"rss-digest/pkg/draft"
)

var draftCmd = &cobra.Command{
	Use:   "draft <article-id>",
	Short: "Draft a share post for an article with the configured LLM",
	Long: `Fill a prompt template with the article and ask the LLM for a Slack-style post.

The default prompt is used unless --prompt names another one. The provider is
llm.provider (openai or anthropic) and needs the matching API key.`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.Flags().String("prompt", "", "prompt ID (default prompt when empty)")
}

func runDraft(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	gen, err := a.generator()
	if err != nil {
		return err
	}
	promptID, _ := cmd.Flags().GetString("prompt")

	post, err := draft.NewService(a.store, gen, a.logger).DraftForArticle(cmd.Context(), args[0], promptID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), post)
}
