package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	SourceAPI   = "api"
	SourceLocal = "local"
)

type Config struct {
	HTTPAddr       string
	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string
	DeckAPIURL     string
	CardSource     string
	HTTPTimeout    time.Duration
	BotToken       string
	BotDebug       bool
	LogLevel       string
}

var defaults = map[string]any{
	"http_addr":       ":5000",
	"database_driver": DriverSQLite,
	"database_path":   "./blackjack.db",
	"database_url":    "",
	"deck_api_url":    "https://deckofcardsapi.com",
	"card_source":     SourceAPI,
	"http_timeout":    10 * time.Second,
	"bot_token":       "",
	"bot_debug":       false,
	"log_level":       "info",
}

// flag name -> config key
var flagKeys = map[string]string{
	"addr":         "http_addr",
	"db-driver":    "database_driver",
	"db-path":      "database_path",
	"db-url":       "database_url",
	"deck-api":     "deck_api_url",
	"card-source":  "card_source",
	"log-level":    "log_level",
	"http-timeout": "http_timeout",
}

// Load reads .env (if present), the environment and the given flags, in that
// order of increasing precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		HTTPAddr:       v.GetString("http_addr"),
		DatabaseDriver: strings.ToLower(v.GetString("database_driver")),
		DatabasePath:   v.GetString("database_path"),
		DatabaseURL:    v.GetString("database_url"),
		DeckAPIURL:     strings.TrimRight(v.GetString("deck_api_url"), "/"),
		CardSource:     strings.ToLower(v.GetString("card_source")),
		HTTPTimeout:    v.GetDuration("http_timeout"),
		BotToken:       v.GetString("bot_token"),
		BotDebug:       v.GetBool("bot_debug"),
		LogLevel:       v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is not set")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.CardSource {
	case SourceAPI:
		if c.DeckAPIURL == "" {
			return fmt.Errorf("DECK_API_URL is not set")
		}
	case SourceLocal:
	default:
		return fmt.Errorf("unsupported CARD_SOURCE %q", c.CardSource)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

func (c *Config) RequireBotToken() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is not set")
	}
	return nil
}
