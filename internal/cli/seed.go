package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitshopapp/storefront/app"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/db"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load products from a catalog file",
	Long: `Load categories, colours, sizes and products from a YAML catalog file.

Products are matched by slug: existing ones are updated, new ones created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		content, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("failed to read catalog file: %w", err)
		}
		seed, err := catalog.NewParser().Parse(content)
		if err != nil {
			return err
		}

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

		seeder := catalog.NewSeeder(db.NewCatalogStore(pool), logger.With("component", "seeder"))
		result, err := seeder.Seed(ctx, seed)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d created, %d updated\n", seedFile, result.Created, result.Updated)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.yaml", "catalog file path")
}
