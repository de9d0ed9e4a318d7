package main

import (
	"context"
	"fmt"

	"blackjack21/internal/config"
	"blackjack21/internal/database"
	"blackjack21/internal/deckapi"
	"blackjack21/internal/logging"
	"blackjack21/internal/round"
	"blackjack21/internal/session"

	"github.com/spf13/cobra"
)

func Execute() error {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logging.L.Error("command failed", "err", err)
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blackjack",
		Short:         "21 game backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("db-driver", "", "database driver: sqlite3 or postgres")
	pf.String("db-path", "", "sqlite database file")
	pf.String("db-url", "", "postgres connection url")
	pf.String("deck-api", "", "deck provider base url")
	pf.String("card-source", "", "card source: api or local")
	pf.Duration("http-timeout", 0, "deck provider request timeout")

	root.AddCommand(serveCmd(), botCmd(), migrateCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logging.L.Info("database connected", "driver", cfg.DatabaseDriver)
	return db, nil
}

func newSource(cfg *config.Config) session.Source {
	if cfg.CardSource == config.SourceLocal {
		return deckapi.NewLocal()
	}
	return deckapi.New(cfg.DeckAPIURL, cfg.HTTPTimeout)
}

// wire builds the session manager and returns the db so the caller can close it.
func wire(ctx context.Context, cfg *config.Config) (*session.Manager, *database.DB, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	repo := round.NewRepository(db.DB, db.Driver)
	return session.NewManager(newSource(cfg), repo), db, nil
}
