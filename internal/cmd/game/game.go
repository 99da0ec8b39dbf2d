// Package game parses game command flags and starts the grid-facing API.
package game

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veilspire/gridlink/internal/platform/config"
	"github.com/veilspire/gridlink/internal/platform/otel"
	"github.com/veilspire/gridlink/internal/rules/catalog"
	"github.com/veilspire/gridlink/internal/services/game/api"
	"github.com/veilspire/gridlink/internal/services/game/app"
	"github.com/veilspire/gridlink/internal/services/game/domain/task"
	"github.com/veilspire/gridlink/internal/services/game/storage/sqlite"
	"github.com/veilspire/gridlink/internal/signing"
)

// nonceRetention keeps nonces well past the signature skew window.
const nonceRetention = time.Hour

// Config holds game command configuration.
type Config struct {
	Addr             string `env:"GRIDLINK_GAME_ADDR" envDefault:":8080"`
	DBPath           string `env:"GRIDLINK_GAME_DB_PATH"`
	NonceDBPath      string `env:"GRIDLINK_GAME_NONCE_DB_PATH"`
	RewardScriptPath string `env:"GRIDLINK_TASK_REWARD_SCRIPT"`
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
	if cfg.NonceDBPath == "" {
		cfg.NonceDBPath = filepath.Join("data", "game-nonces.db")
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "game server listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the game sqlite database")
	fs.StringVar(&cfg.NonceDBPath, "nonce-db-path", cfg.NonceDBPath, "path to the nonce replay database")
	fs.StringVar(&cfg.RewardScriptPath, "reward-script", cfg.RewardScriptPath, "path to a Lua task reward script")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game API service and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	logger := log.Default()

	shutdownTracing, err := otel.Setup(ctx, "gridlink-game")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}

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

	keyring, err := signing.KeyringFromEnv()
	if err != nil {
		return fmt.Errorf("load hmac keyring: %w", err)
	}
	nonces, err := signing.OpenNonceStore(cfg.NonceDBPath, nonceRetention)
	if err != nil {
		return fmt.Errorf("open nonce store: %w", err)
	}
	defer func() {
		if err := nonces.Close(); err != nil {
			logger.Printf("close nonce store: %v", err)
		}
	}()
	go nonces.RunSweeper(ctx, nonceRetention/2, logger)

	opts := []app.Option{}
	if path := strings.TrimSpace(cfg.RewardScriptPath); path != "" {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read reward script: %w", err)
		}
		script, err := task.CompileRewardScript(string(source))
		if err != nil {
			return fmt.Errorf("compile reward script: %w", err)
		}
		opts = append(opts, app.WithRewardScript(script))
		logger.Printf("task reward script loaded path=%s", path)
	}

	service, err := app.New(store, cat, logger, opts...)
	if err != nil {
		return fmt.Errorf("init game service: %w", err)
	}

	server, err := api.New(cfg.Addr, service, signing.NewVerifier(keyring, nonces, logger), logger)
	if err != nil {
		return fmt.Errorf("init game server: %w", err)
	}
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve game: %w", err)
	}
	return nil
}
