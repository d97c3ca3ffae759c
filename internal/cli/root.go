package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Clothing storefront server and maintenance commands",
	Long: `Storefront serves the shop's HTTP API and carries the commands that
prepare its database: schema migrations and catalog seeding.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "storefront %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func Root() *cobra.Command {
	return rootCmd
}
