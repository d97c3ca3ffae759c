package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitshopapp/storefront/app"
	"github.com/gitshopapp/storefront/server"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the storefront HTTP server until interrupted.

On SIGINT or SIGTERM in-flight requests get 30 seconds to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New()
		if err != nil {
			return err
		}
		defer application.Close()

		srv, err := server.New(application.Config, application.Logger, application.Handlers)
		if err != nil {
			return err
		}

		serverErr := make(chan error, 1)
		go func() {
			serverErr <- srv.Run()
		}()

		select {
		case err := <-serverErr:
			if err != nil {
				application.Logger.Error("server failed", "error", err)
			}
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			application.Logger.Error("server forced to shutdown", "error", err)
			return err
		}
		return nil
	},
}
