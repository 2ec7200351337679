package cmd

import (
	"github.com/spf13/cobra"

	"rss-digest/pkg/domain"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete articles older than the retention window",
	Long: `Delete articles created more than N days ago. Favorited articles are kept.

Without --days the stored retention setting is used.

Examples:
  rss-digest sweep            # use the stored setting
  rss-digest sweep --days 30  # keep the last 30 days`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().Int("days", 0, "retention window in days (1-365)")
}

type sweepOutput struct {
	domain.SweepResult
	RetentionDays int `json:"retentionDays"`
}

func runSweep(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sweeper := a.sweeper()
	var out sweepOutput
	if cmd.Flags().Changed("days") {
		out.RetentionDays, _ = cmd.Flags().GetInt("days")
		out.SweepResult, err = sweeper.Sweep(cmd.Context(), out.RetentionDays)
	} else {
		out.SweepResult, out.RetentionDays, err = sweeper.SweepWithSettings(cmd.Context())
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}
