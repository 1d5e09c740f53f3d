package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/auracore/internal/game/status"
)

type catalogFile struct {
	Effects []effectYAML `yaml:"effects"`
}

type effectYAML struct {
	Type              string         `yaml:"type"`
	Stacking          string         `yaml:"stacking"`
	MaxStacks         int            `yaml:"max_stacks"`
	Duration          float64        `yaml:"duration"`
	RefreshMode       string         `yaml:"refresh_mode"`
	MaxDuration       float64        `yaml:"max_duration"`
	Shield            int            `yaml:"shield"`
	ShieldPolicy      string         `yaml:"shield_policy"`
	TickInterval      float64        `yaml:"tick_interval"`
	DisablesCollision bool           `yaml:"disables_collision"`
	RemovedOnCast     bool           `yaml:"removed_on_cast"`
	BlockedBy         []string       `yaml:"blocked_by"`
	Modifiers         []modifierYAML `yaml:"modifiers"`
}

type modifierYAML struct {
	Property string  `yaml:"property"`
	Value    float64 `yaml:"value"`
	Mode     string  `yaml:"mode"`
}

// LoadCatalogYAML читает каталог эффектов из YAML-файла.
// В отличие от конфига, отсутствующий файл считается ошибкой: пустой каталог не имеет смысла.
func LoadCatalogYAML(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := ParseCatalogYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	slog.Info("loaded effect definitions", "source", path, "count", c.Len())
	return c, nil
}

// ParseCatalogYAML строит каталог из YAML-документа.
func ParseCatalogYAML(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if len(f.Effects) == 0 {
		return nil, fmt.Errorf("%w: no effects defined", ErrInvalidDefinition)
	}

	defs := make([]status.Definition, 0, len(f.Effects))
	var errs []error
	for i, e := range f.Effects {
		def, err := e.definition()
		if err != nil {
			errs = append(errs, fmt.Errorf("effect #%d (%s): %w", i, e.Type, err))
			continue
		}
		defs = append(defs, def)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, errors.Join(errs...))
	}
	return NewCatalog(defs)
}

func (e *effectYAML) definition() (status.Definition, error) {
	var (
		def  status.Definition
		err  error
		errs []error
	)
	if def.Type, err = status.ParseEffectType(e.Type); err != nil {
		errs = append(errs, err)
	}
	if def.Stacking, err = status.ParseStackingPolicy(e.Stacking); err != nil {
		errs = append(errs, err)
	}
	if def.RefreshMode, err = status.ParseRefreshMode(e.RefreshMode); err != nil {
		errs = append(errs, err)
	}
	if def.ShieldPolicy, err = status.ParseShieldPolicy(e.ShieldPolicy); err != nil {
		errs = append(errs, err)
	}

	def.MaxStacks = e.MaxStacks
	if def.MaxStacks == 0 {
		def.MaxStacks = 1
	}
	def.Duration = e.Duration
	def.MaxDuration = e.MaxDuration
	def.Shield = e.Shield
	def.TickInterval = e.TickInterval
	def.DisablesCollision = e.DisablesCollision
	def.RemovedOnCast = e.RemovedOnCast

	for _, label := range e.BlockedBy {
		t, err := status.ParseEffectType(label)
		if err != nil {
			errs = append(errs, fmt.Errorf("blocked_by: %w", err))
			continue
		}
		def.BlockedBy = append(def.BlockedBy, t)
	}
	for _, m := range e.Modifiers {
		p, err := status.ParseProperty(m.Property)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		mode, err := status.ParseApplicationMode(m.Mode)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def.Modifiers = append(def.Modifiers, status.Modifier{Property: p, Value: m.Value, Mode: mode})
	}
	return def, errors.Join(errs...)
}
