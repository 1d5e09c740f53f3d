package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. COMBATD_LOG_LEVEL.
const EnvPrefix = "COMBATD_"

// Catalog sources.
const (
	CatalogBuiltin  = "builtin"
	CatalogYAML     = "yaml"
	CatalogPostgres = "postgres"
)

// Server holds all configuration for the combat daemon.
type Server struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Simulation
	TickInterval  time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`   // fixed step (default: 50ms)
	FlushInterval time.Duration `yaml:"flush_interval" env:"FLUSH_INTERVAL"` // replication batching (default: one tick)

	// Effect catalog
	CatalogSource string `yaml:"catalog_source" env:"CATALOG_SOURCE"` // builtin | yaml | postgres
	CatalogPath   string `yaml:"catalog_path" env:"CATALOG_PATH"`
	SeedCatalog   bool   `yaml:"seed_catalog" env:"SEED_CATALOG"` // postgres: store builtin definitions when the table is empty

	// Database (catalog_source: postgres)
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`

	// Observers attach one logging replication mirror per character.
	Observers bool `yaml:"observers" env:"OBSERVERS"`

	Characters []CharacterConfig `yaml:"characters"`
	Scenario   []ScenarioStep    `yaml:"scenario"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// CharacterConfig describes a character spawned at startup.
type CharacterConfig struct {
	ID    uint32 `yaml:"id"`
	Name  string `yaml:"name"`
	Class string `yaml:"class"` // Warrior | Mage | Rogue
	Level int32  `yaml:"level"`
}

// Scenario actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionDamage = "damage"
	ActionHeal   = "heal"
	ActionJump   = "jump"
	ActionLand   = "land"
	ActionCast   = "cast"
)

var actions = []string{ActionAdd, ActionRemove, ActionDamage, ActionHeal, ActionJump, ActionLand, ActionCast}

// ScenarioStep is one scripted command, issued At after the loop starts.
type ScenarioStep struct {
	At     time.Duration `yaml:"at"`
	Action string        `yaml:"action"`
	Target uint32        `yaml:"target"`
	Caster uint32        `yaml:"caster"`

	Effect     string   `yaml:"effect"`
	Stacks     int      `yaml:"stacks"`
	Duration   *float64 `yaml:"duration"` // seconds, -1 for infinite; nil keeps the catalog value
	ExtraSpeed float64  `yaml:"extra_speed"`
	Amount     int      `yaml:"amount"` // damage / heal
}

// DefaultServer returns Server config with sensible defaults and a short
// demonstration scenario.
func DefaultServer() Server {
	return Server{
		LogLevel:      "info",
		TickInterval:  50 * time.Millisecond,
		FlushInterval: 50 * time.Millisecond,
		CatalogSource: CatalogBuiltin,
		CatalogPath:   "config/effects.yaml",
		SeedCatalog:   true,
		Observers:     true,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "auracore",
			Password: "auracore",
			DBName:   "auracore",
			SSLMode:  "disable",
		},
		Characters: []CharacterConfig{
			{ID: 1, Name: "Aldric", Class: "Warrior", Level: 5},
			{ID: 2, Name: "Mira", Class: "Mage", Level: 5},
		},
		Scenario: []ScenarioStep{
			{At: 0, Action: ActionAdd, Target: 1, Caster: 1, Effect: "Armor"},
			{At: 100 * time.Millisecond, Action: ActionAdd, Target: 1, Caster: 2, Effect: "Poison", Stacks: 2},
			{At: 300 * time.Millisecond, Action: ActionAdd, Target: 2, Caster: 2, Effect: "Shield"},
			{At: 500 * time.Millisecond, Action: ActionDamage, Target: 2, Caster: 1, Amount: 30},
			{At: 700 * time.Millisecond, Action: ActionAdd, Target: 1, Caster: 2, Effect: "Frozen"},
			{At: 800 * time.Millisecond, Action: ActionAdd, Target: 1, Caster: 2, Effect: "Stun"},
			{At: time.Second, Action: ActionJump, Target: 2},
			{At: 1500 * time.Millisecond, Action: ActionLand, Target: 2},
			{At: 2 * time.Second, Action: ActionAdd, Target: 2, Caster: 2, Effect: "Invisible"},
			{At: 2500 * time.Millisecond, Action: ActionCast, Target: 2},
		},
	}
}

// LoadServer loads the daemon config from a YAML file and applies
// environment overrides. If the file doesn't exist, defaults are used.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with COMBATD_* environment variables.
// Unset variables leave the current value untouched.
func ApplyEnv(cfg *Server) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Validate checks the values the daemon cannot start with.
func (s Server) Validate() error {
	var errs []error
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval %s must be positive", s.TickInterval))
	}
	if s.FlushInterval < 0 {
		errs = append(errs, fmt.Errorf("flush_interval %s must not be negative", s.FlushInterval))
	}
	switch s.CatalogSource {
	case CatalogBuiltin, CatalogPostgres:
	case CatalogYAML:
		if s.CatalogPath == "" {
			errs = append(errs, errors.New("catalog_source yaml requires catalog_path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog_source %q", s.CatalogSource))
	}

	ids := make(map[uint32]bool, len(s.Characters))
	for _, c := range s.Characters {
		if c.ID == 0 {
			errs = append(errs, fmt.Errorf("character %q: id 0 is reserved", c.Name))
		}
		if ids[c.ID] {
			errs = append(errs, fmt.Errorf("duplicate character id %d", c.ID))
		}
		ids[c.ID] = true
	}
	for i, st := range s.Scenario {
		if !slices.Contains(actions, st.Action) {
			errs = append(errs, fmt.Errorf("scenario step %d: unknown action %q", i, st.Action))
		}
		if !ids[st.Target] {
			errs = append(errs, fmt.Errorf("scenario step %d: unknown target %d", i, st.Target))
		}
		if st.At < 0 {
			errs = append(errs, fmt.Errorf("scenario step %d: negative offset %s", i, st.At))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
