package main

import (
	"os"
	"os/signal"
	"syscall"

	"blackjack21/internal/api"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mgr, db, err := wire(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			return api.New(mgr).ListenAndServe(ctx, cfg.HTTPAddr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :5000)")
	return cmd
}
