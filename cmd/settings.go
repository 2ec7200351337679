package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rss-digest/pkg/catalog"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the retention setting",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			settings, err := svc.GetSettings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), settings)
		})
	},
}

var settingsRetentionCmd = &cobra.Command{
	Use:   "set-retention <days>",
	Short: "Keep articles for this many days (1-365)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("retention days must be a whole number: %q", args[0])
		}
		return withCatalog(cmd, func(svc *catalog.Service) error {
			settings, err := svc.UpdateRetentionDays(cmd.Context(), days)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), settings)
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsRetentionCmd)
}
