package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitshopapp/storefront/app"
	"github.com/gitshopapp/storefront/internal/db"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every embedded migration that has not run yet, each in its own
transaction. A migration whose file changed after it was applied stops the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		cfg, logger, flush, err := app.Bootstrap()
		if err != nil {
			return err
		}
		defer flush()

		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if migrateDryRun {
			pending, err := db.Pending(ctx, pool)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(out, "Database is up to date.")
				return nil
			}
			for _, m := range pending {
				fmt.Fprintf(out, "pending  %s\n", m.Name)
			}
			return nil
		}

		applied, err := db.Migrate(ctx, pool)
		for _, name := range applied {
			fmt.Fprintf(out, "applied  %s\n", name)
		}
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "Database is up to date.")
		}
		logger.Info("migrations complete", "applied", len(applied))
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list pending migrations without applying them")
}
