package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blackjack21/internal/bot"

	"github.com/spf13/cobra"
)

func botCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireBotToken(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mgr, db, err := wire(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			b, err := bot.New(cfg.BotToken, cfg.BotDebug, mgr)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}
			return b.Run(ctx)
		},
	}
}
