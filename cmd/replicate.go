package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rss-digest/pkg/db"
	"rss-digest/pkg/replication"
)

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Copy all data from the configured store into another one",
	Long: `Copy sources, tags, articles, favorites, settings and prompts from the
configured database into a target database. Records already in the target are
kept, so the command can be re-run.

Examples:
  rss-digest replicate --target-driver postgres --target-dsn postgres://localhost/rssdigest
  rss-digest replicate --target-driver mongo --target-mongo-uri mongodb://localhost:27017`,
	Args: cobra.NoArgs,
	RunE: runReplicate,
}

func init() {
	rootCmd.AddCommand(replicateCmd)
	replicateCmd.Flags().String("target-driver", "", "postgres, supabase or mongo")
	replicateCmd.Flags().String("target-dsn", "", "Postgres DSN of the target")
	replicateCmd.Flags().String("target-mongo-uri", "", "Mongo URI of the target")
	replicateCmd.Flags().String("target-mongo-database", "", "Mongo database of the target")
	_ = replicateCmd.MarkFlagRequired("target-driver")
}

func runReplicate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	targetCfg := *a.cfg
	flags := cmd.Flags()
	targetCfg.Database.Driver, _ = flags.GetString("target-driver")
	if v, _ := flags.GetString("target-dsn"); v != "" {
		targetCfg.Database.DSN = v
	}
	if v, _ := flags.GetString("target-mongo-uri"); v != "" {
		targetCfg.Database.MongoURI = v
	}
	if v, _ := flags.GetString("target-mongo-database"); v != "" {
		targetCfg.Database.MongoDatabase = v
	}
	if err := targetCfg.Validate(); err != nil {
		return err
	}
	if targetCfg.Database == a.cfg.Database {
		return fmt.Errorf("target database is the configured database")
	}

	target, err := db.Open(ctx, &targetCfg, a.logger)
	if err != nil {
		return fmt.Errorf("opening target: %w", err)
	}
	defer target.Close()

	r, err := replication.NewReplicator(replication.Config{From: a.store, To: target, Logger: a.logger})
	if err != nil {
		return err
	}
	stats, err := r.Replicate(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), stats)
}
