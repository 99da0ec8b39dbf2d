// Package seed loads YAML fixtures into a game store so local environments
// and demos start with populated regions.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/rules/catalog"
	"github.com/veilspire/gridlink/internal/services/game/app"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/domain/inventory"
	"github.com/veilspire/gridlink/internal/services/game/domain/task"
	"github.com/veilspire/gridlink/internal/services/game/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath      string
	FixturePath string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		DBPath: os.Getenv("GRIDLINK_GAME_DB_PATH"),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "game.db")
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the game sqlite database")
	fs.StringVar(&cfg.FixturePath, "fixture", cfg.FixturePath, "path to the YAML fixture file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.FixturePath == "" {
		return Config{}, fmt.Errorf("-fixture is required")
	}
	return cfg, nil
}

// Fixture is the root of a seed file.
type Fixture struct {
	Characters []CharacterFixture `yaml:"characters"`
	Tasks      []TaskFixture      `yaml:"tasks"`
}

// CharacterFixture seeds one character with optional effects and items.
type CharacterFixture struct {
	Name      string        `yaml:"name"`
	AvatarKey string        `yaml:"avatar_key"`
	Kind      string        `yaml:"kind"`
	Region    string        `yaml:"region"`
	Base      StatsFixture  `yaml:"base"`
	Effects   []string      `yaml:"effects"`
	Items     []ItemFixture `yaml:"items"`
}

// StatsFixture mirrors base stats with YAML field names.
type StatsFixture struct {
	MaxHealth int `yaml:"max_health"`
	Attack    int `yaml:"attack"`
	Defense   int `yaml:"defense"`
	Speed     int `yaml:"speed"`
	Regen     int `yaml:"regen"`
}

func (s StatsFixture) base() rules.BaseStats {
	return rules.BaseStats{
		MaxHealth: s.MaxHealth,
		Attack:    s.Attack,
		Defense:   s.Defense,
		Speed:     s.Speed,
		Regen:     s.Regen,
	}
}

// ItemFixture seeds one inventory stack.
type ItemFixture struct {
	Key      string `yaml:"key"`
	Quantity int64  `yaml:"quantity"`
}

// TaskFixture seeds one offered NPC task.
type TaskFixture struct {
	NPCID      string `yaml:"npc_id"`
	Kind       string `yaml:"kind"`
	BaseReward int64  `yaml:"base_reward"`
	Streak     int    `yaml:"streak"`
}

// ParseFixture decodes a fixture document.
func ParseFixture(data []byte) (Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if len(fixture.Characters) == 0 && len(fixture.Tasks) == 0 {
		return Fixture{}, fmt.Errorf("fixture has no characters or tasks")
	}
	return fixture, nil
}

// Run loads the fixture file and writes it through the game service.
func Run(ctx context.Context, cfg Config, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	data, err := os.ReadFile(cfg.FixturePath)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	fixture, err := ParseFixture(data)
	if err != nil {
		return err
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
	service, err := app.New(store, cat, logger)
	if err != nil {
		return fmt.Errorf("init game service: %w", err)
	}

	return Apply(ctx, service, fixture, logger)
}

// Apply writes the fixture through the service so seeded data passes the
// same validation as live traffic.
func Apply(ctx context.Context, service *app.Service, fixture Fixture, logger *log.Logger) error {
	for _, fc := range fixture.Characters {
		c, err := service.RegisterCharacter(ctx, character.RegisterInput{
			Name:      fc.Name,
			AvatarKey: fc.AvatarKey,
			Kind:      character.Kind(fc.Kind),
			Region:    fc.Region,
			Base:      fc.Base.base(),
		})
		if err != nil {
			return fmt.Errorf("seed character %q: %w", fc.Name, err)
		}

		for _, key := range fc.Effects {
			if _, _, err := service.ApplyEffect(ctx, c.ID, app.ApplyEffectInput{TemplateKey: key}); err != nil {
				return fmt.Errorf("seed effect %q on %q: %w", key, fc.Name, err)
			}
		}
		for _, item := range fc.Items {
			if _, err := service.GrantItem(ctx, inventory.ChangeInput{
				CharacterID: c.ID,
				ItemKey:     item.Key,
				Quantity:    item.Quantity,
			}); err != nil {
				return fmt.Errorf("seed item %q on %q: %w", item.Key, fc.Name, err)
			}
		}
		if logger != nil {
			logger.Printf("seeded character id=%s name=%q region=%s effects=%d items=%d",
				c.ID, c.Name, c.Region, len(fc.Effects), len(fc.Items))
		}
	}

	for _, ft := range fixture.Tasks {
		offered, err := service.OfferTask(ctx, task.OfferInput{
			NPCID:      ft.NPCID,
			Kind:       ft.Kind,
			BaseReward: ft.BaseReward,
			Streak:     ft.Streak,
		})
		if err != nil {
			return fmt.Errorf("seed task for npc %q: %w", ft.NPCID, err)
		}
		if logger != nil {
			logger.Printf("seeded task id=%s npc=%s kind=%s", offered.ID, offered.NPCID, offered.Kind)
		}
	}
	return nil
}
