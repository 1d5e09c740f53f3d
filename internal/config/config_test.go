package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServer(), cfg)
}

func TestLoadServer_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combatd.yaml")
	doc := `
log_level: debug
tick_interval: 20ms
catalog_source: yaml
catalog_path: effects.yaml
database:
  host: db.internal
  port: 6432
characters:
  - {id: 7, name: Vex, class: Rogue, level: 3}
scenario:
  - {at: 1s, action: add, target: 7, caster: 7, effect: Haste, duration: -1}
  - {at: 2s, action: damage, target: 7, amount: 12}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := LoadServer(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, CatalogYAML, cfg.CatalogSource)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "auracore", cfg.Database.User, "unset fields keep defaults")

	require.Len(t, cfg.Characters, 1)
	assert.Equal(t, CharacterConfig{ID: 7, Name: "Vex", Class: "Rogue", Level: 3}, cfg.Characters[0])

	require.Len(t, cfg.Scenario, 2)
	require.NotNil(t, cfg.Scenario[0].Duration)
	assert.InDelta(t, -1, *cfg.Scenario[0].Duration, 1e-12)
	assert.Nil(t, cfg.Scenario[1].Duration)
	assert.Equal(t, 2*time.Second, cfg.Scenario[1].At)
}

func TestLoadServer_EnvOverrides(t *testing.T) {
	t.Setenv("COMBATD_LOG_LEVEL", "warn")
	t.Setenv("COMBATD_TICK_INTERVAL", "10ms")
	t.Setenv("COMBATD_CATALOG_SOURCE", "postgres")
	t.Setenv("COMBATD_DB_HOST", "pg")
	t.Setenv("COMBATD_DB_PORT", "15432")

	cfg, err := LoadServer(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, CatalogPostgres, cfg.CatalogSource)
	assert.Equal(t, "postgres://auracore:auracore@pg:15432/auracore?sslmode=disable", cfg.Database.DSN())
}

func TestLoadServer_BadEnv(t *testing.T) {
	t.Setenv("COMBATD_TICK_INTERVAL", "soon")

	_, err := LoadServer(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadServer_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combatd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_interval: [oops"), 0o600))

	_, err := LoadServer(path)
	require.Error(t, err)
}

func TestServer_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Server)
	}{
		{"zero tick", func(s *Server) { s.TickInterval = 0 }},
		{"negative flush", func(s *Server) { s.FlushInterval = -time.Second }},
		{"unknown catalog source", func(s *Server) { s.CatalogSource = "redis" }},
		{"yaml without path", func(s *Server) { s.CatalogSource = CatalogYAML; s.CatalogPath = "" }},
		{"duplicate character", func(s *Server) { s.Characters = append(s.Characters, s.Characters[0]) }},
		{"reserved id", func(s *Server) { s.Characters[0].ID = 0 }},
		{"unknown action", func(s *Server) { s.Scenario[0].Action = "teleport" }},
		{"unknown target", func(s *Server) { s.Scenario[0].Target = 99 }},
	}

	require.NoError(t, DefaultServer().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServer()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadServer_ShippedConfig(t *testing.T) {
	cfg, err := LoadServer(filepath.Join("..", "..", "config", "combatd.yaml"))
	require.NoError(t, err)

	assert.Equal(t, CatalogBuiltin, cfg.CatalogSource)
	assert.Equal(t, 100*time.Millisecond, cfg.FlushInterval)
	assert.Len(t, cfg.Characters, 3)
	assert.NotEmpty(t, cfg.Scenario)
}
