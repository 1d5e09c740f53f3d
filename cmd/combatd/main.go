package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/auracore/internal/config"
	"github.com/udisondev/auracore/internal/data"
	"github.com/udisondev/auracore/internal/db"
	"github.com/udisondev/auracore/internal/game/loop"
	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/model"
	"github.com/udisondev/auracore/internal/replication"
)

const ConfigPath = "config/combatd.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv(config.EnvPrefix + "CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("combatd starting",
		"log_level", cfg.LogLevel,
		"tick", cfg.TickInterval,
		"flush", cfg.FlushInterval,
		"catalog", cfg.CatalogSource)

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading effect catalog: %w", err)
	}
	fp := catalog.Fingerprint()
	slog.Info("effect catalog ready", "effects", catalog.Len(), "fingerprint", hex.EncodeToString(fp[:8]))

	if err := data.LoadClassTemplates(); err != nil {
		return fmt.Errorf("loading class templates: %w", err)
	}

	mgr := loop.NewManager(loop.Config{
		TickInterval:  cfg.TickInterval,
		FlushInterval: cfg.FlushInterval,
	})

	for _, cc := range cfg.Characters {
		unit, err := spawnCharacter(cc, catalog)
		if err != nil {
			return fmt.Errorf("spawning character %d: %w", cc.ID, err)
		}
		if err := mgr.Register(unit); err != nil {
			return fmt.Errorf("registering character %d: %w", cc.ID, err)
		}
		if cfg.Observers {
			if _, err := attachObserver(unit.Channel, cc.ID, fp); err != nil {
				return fmt.Errorf("attaching observer to %d: %w", cc.ID, err)
			}
		}
	}
	slog.Info("characters spawned", "count", mgr.Count(), "observers", cfg.Observers)

	schedule, err := buildSchedule(mgr, cfg.Scenario)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := mgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("simulation loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := loop.RunSchedule(gctx, mgr, schedule); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scenario: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// loadCatalog builds the effect catalog from the configured source.
func loadCatalog(ctx context.Context, cfg config.Server) (*data.Catalog, error) {
	switch cfg.CatalogSource {
	case config.CatalogYAML:
		return data.LoadCatalogYAML(cfg.CatalogPath)
	case config.CatalogPostgres:
		return loadPostgresCatalog(ctx, cfg)
	default:
		return data.BuiltinCatalog()
	}
}

func loadPostgresCatalog(ctx context.Context, cfg config.Server) (*data.Catalog, error) {
	dsn := cfg.Database.DSN()
	if err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer database.Close()
	slog.Info("database connected", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	repo := database.Definitions()
	n, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 && cfg.SeedCatalog {
		builtin, err := data.BuiltinCatalog()
		if err != nil {
			return nil, err
		}
		if err := repo.SaveAll(ctx, builtin.Definitions()); err != nil {
			return nil, fmt.Errorf("seeding effect definitions: %w", err)
		}
		slog.Info("effect definitions seeded", "count", builtin.Len())
	}

	defs, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return data.NewCatalog(defs)
}

// spawnCharacter creates the character, its combat state and replication channel.
func spawnCharacter(cc config.CharacterConfig, catalog *data.Catalog) (*loop.Unit, error) {
	class, err := data.ParseClass(cc.Class)
	if err != nil {
		return nil, err
	}
	tmpl := data.GetClassTemplate(class)
	if tmpl == nil {
		return nil, fmt.Errorf("no template for class %s", class)
	}

	char := model.NewCharacter(cc.ID, cc.Name, class.String(), cc.Level, tmpl.MaxHP(cc.Level))
	char.OnDeath(func() {
		slog.Info("character died", "objectID", cc.ID, "name", cc.Name)
	})

	bus := status.NewBus()
	bus.Subscribe(func(e status.Event) {
		slog.Debug("authoritative event",
			"seq", e.Seq,
			"kind", e.Kind,
			"character", e.Character,
			"effect", e.Type,
			"stacks", e.Stacks,
			"reason", e.Reason)
	})

	ch := replication.NewChannel(replication.ChannelConfig{
		Character:   cc.ID,
		Fingerprint: catalog.Fingerprint(),
	})
	state, auth := status.NewCombatState(status.CombatStateConfig{
		Character:  char,
		Base:       tmpl.Stats(cc.Level),
		Catalog:    catalog,
		Bus:        bus,
		Replicator: ch,
	})

	slog.Info("character spawned",
		"objectID", cc.ID,
		"name", cc.Name,
		"class", class,
		"level", cc.Level,
		"hp", char.MaxHP())

	return &loop.Unit{State: state, Auth: auth, Channel: ch}, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
