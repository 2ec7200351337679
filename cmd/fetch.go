package cmd

import (
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Ingest every active source once",
	Long: `Fetch every active source, store new articles and print one result per source.

Per-source problems are reported in the results and do not fail the command.
The command fails when sources or tags cannot be loaded.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	batch, err := a.orchestrator().FetchAll(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), batch)
}
