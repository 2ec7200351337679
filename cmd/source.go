package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rss-digest/pkg/catalog"
)

var sourceCmd = &cobra.Command{
	Use:     "source",
	Aliases: []string{"sources"},
	Short:   "Manage feed sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Subscribe to a feed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			src, err := svc.CreateSource(cmd.Context(), catalog.CreateSourceRequest{Name: args[0], URL: args[1]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), src)
		})
	},
}

var sourceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sources, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			sources, err := svc.ListSources(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sources)
		})
	},
}

var sourceRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a source and its articles",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(svc *catalog.Service) error {
			if err := svc.DeleteSource(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "source %s deleted\n", args[0])
			return nil
		})
	},
}

func sourceToggleCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Set a source's active flag to %t", active),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(cmd, func(svc *catalog.Service) error {
				src, err := svc.SetSourceActive(cmd.Context(), args[0], active)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), src)
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(sourceCmd)
	sourceCmd.AddCommand(sourceAddCmd, sourceListCmd, sourceRemoveCmd,
		sourceToggleCmd("enable", true), sourceToggleCmd("disable", false))
}

// withCatalog opens the store for the duration of fn.
func withCatalog(cmd *cobra.Command, fn func(svc *catalog.Service) error) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.catalog())
}
