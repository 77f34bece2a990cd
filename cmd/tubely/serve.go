package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tubely/internal/logging"
	"tubely/internal/server/bootstrap"
)

func newServeCommand(opts *cliOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("port") {
				overrides["server.port"] = port
			}
			cfg, err := opts.load(overrides)
			if err != nil {
				return err
			}
			logging.Setup(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
			logger := logging.NewComponentLogger("Main")
			logger.Info("Starting tubely server...")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := bootstrap.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer srv.Close()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override server.port")
	return cmd
}
