// Package admin parses admin command flags and starts the operator surface.
package admin

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/veilspire/gridlink/internal/platform/config"
	"github.com/veilspire/gridlink/internal/platform/i18n"
	"github.com/veilspire/gridlink/internal/platform/otel"
	"github.com/veilspire/gridlink/internal/rules/catalog"
	adminserver "github.com/veilspire/gridlink/internal/services/admin"
	"github.com/veilspire/gridlink/internal/services/game/app"
	"github.com/veilspire/gridlink/internal/services/game/storage/sqlite"
	"github.com/veilspire/gridlink/internal/token"
)

// Config holds admin command configuration.
type Config struct {
	Addr   string `env:"GRIDLINK_ADMIN_ADDR" envDefault:":8082"`
	DBPath string `env:"GRIDLINK_GAME_DB_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "game.db")
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "admin server listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the game sqlite database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the admin surface and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	logger := log.Default()

	shutdownTracing, err := otel.Setup(ctx, "gridlink-admin")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open game store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Printf("close game store: %v", err)
		}
	}()

	cat, err := catalog.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load effect catalog: %w", err)
	}
	service, err := app.New(store, cat, logger)
	if err != nil {
		return fmt.Errorf("init game service: %w", err)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load locale catalogs: %w", err)
	}

	tokenConfig, err := token.LoadConfigFromEnv(nil)
	if err != nil {
		return fmt.Errorf("load session token config: %w", err)
	}

	server, err := adminserver.New(cfg.Addr, service, bundle, tokenConfig, logger)
	if err != nil {
		return fmt.Errorf("init admin server: %w", err)
	}
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve admin: %w", err)
	}
	return nil
}
