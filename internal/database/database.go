package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
	Driver string
}

// sqlOpenFunc is swapped in tests.
var sqlOpenFunc = sql.Open

func New(ctx context.Context, driver, dsn string) (*DB, error) {
	db, err := sqlOpenFunc(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite пишет в один поток, а :memory: живёт только в одном соединении
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// Migrate creates the schema. The DDL is valid for both sqlite and postgres.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		deck_id TEXT NOT NULL DEFAULT '',
		player_cards TEXT NOT NULL DEFAULT '[]',
		dealer_cards TEXT NOT NULL DEFAULT '[]',
		player_points INTEGER NOT NULL DEFAULT 0,
		dealer_points INTEGER NOT NULL DEFAULT 0,
		winner TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rounds_created_at ON rounds(created_at);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}
