package data

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/auracore/internal/game/status"
)

// ClassID: идентификатор боевого класса персонажа.
type ClassID int32

const (
	ClassWarrior ClassID = iota
	ClassMage
	ClassRogue
)

var classNames = [...]string{"Warrior", "Mage", "Rogue"}

func (c ClassID) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("ClassID(%d)", int32(c))
}

// ParseClass разбирает имя класса из конфига.
func ParseClass(name string) (ClassID, error) {
	for i, n := range classNames {
		if n == name {
			return ClassID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown class %q", name)
}

// classTemplateDef: Go-литерал шаблона класса.
// Значения *PerLevel прибавляются за каждый уровень сверх первого.
type classTemplateDef struct {
	class ClassID

	baseHP     int
	hpPerLevel int

	resistFix         int
	resistFixPerLevel float64
	resistPerc        float64 // доля, -0.1 = 10% снижения урона

	bonusDamages         int
	bonusDamagesPerLevel float64
	bonusDamagesPerc     float64

	bonusTickDamages int
	bonusTickHeal    int
}

var classTemplateDefs = []classTemplateDef{
	{
		class:  ClassWarrior,
		baseHP: 50, hpPerLevel: 12,
		resistFix: 2, resistFixPerLevel: 0.5, resistPerc: -0.1,
		bonusDamages: 1, bonusDamagesPerLevel: 0.25,
	},
	{
		class:  ClassMage,
		baseHP: 50, hpPerLevel: 6,
		bonusDamagesPerc: 0.05,
		bonusTickDamages: 1, bonusTickHeal: 1,
	},
	{
		class:  ClassRogue,
		baseHP: 50, hpPerLevel: 8,
		resistFix: 1, resistFixPerLevel: 0.25,
		bonusDamages: 2, bonusDamagesPerLevel: 0.5, bonusDamagesPerc: 0.1,
	},
}

// ClassTemplate: базовые боевые характеристики класса.
type ClassTemplate struct {
	Class ClassID
	def   *classTemplateDef
}

// ClassTemplates: шаблоны всех классов, заполняются LoadClassTemplates.
var ClassTemplates map[ClassID]*ClassTemplate

// LoadClassTemplates строит ClassTemplates из Go-литералов (classTemplateDefs).
func LoadClassTemplates() error {
	ClassTemplates = make(map[ClassID]*ClassTemplate, len(classTemplateDefs))
	for i := range classTemplateDefs {
		def := &classTemplateDefs[i]
		if def.baseHP <= 0 {
			return fmt.Errorf("class %s: base hp %d must be positive", def.class, def.baseHP)
		}
		ClassTemplates[def.class] = &ClassTemplate{Class: def.class, def: def}
	}
	slog.Info("loaded class templates", "count", len(ClassTemplates))
	return nil
}

// GetClassTemplate возвращает шаблон класса или nil.
func GetClassTemplate(c ClassID) *ClassTemplate {
	if ClassTemplates == nil {
		return nil
	}
	return ClassTemplates[c]
}

// MaxHP: начальный запас здоровья на уровне level.
func (t *ClassTemplate) MaxHP(level int32) int {
	return t.def.baseHP + t.def.hpPerLevel*int(levelsAboveFirst(level))
}

// Stats возвращает базовые характеристики уровня level.
func (t *ClassTemplate) Stats(level int32) *BaseStats {
	n := float64(levelsAboveFirst(level))
	return &BaseStats{
		Class:            t.Class,
		Level:            level,
		ResistanceFix:    t.def.resistFix + int(t.def.resistFixPerLevel*n),
		ResistancePerc:   t.def.resistPerc,
		BonusDamages:     t.def.bonusDamages + int(t.def.bonusDamagesPerLevel*n),
		BonusDamagesPerc: t.def.bonusDamagesPerc,
		BonusTickDamages: t.def.bonusTickDamages,
		BonusTickHeal:    t.def.bonusTickHeal,
	}
}

func levelsAboveFirst(level int32) int32 {
	return max(0, level-1)
}

// BaseStats: статические характеристики персонажа, реализует status.BaseStats.
// Скорость от класса не зависит: SpeedBonus всегда считается от 1.0.
type BaseStats struct {
	Class ClassID
	Level int32

	ResistanceFix    int
	ResistancePerc   float64
	BonusDamages     int
	BonusDamagesPerc float64
	BonusTickDamages int
	BonusTickHeal    int
}

var _ status.BaseStats = (*BaseStats)(nil)

// Int возвращает плоское базовое значение свойства.
func (s *BaseStats) Int(p status.Property) int {
	switch p {
	case status.PropResistanceFix:
		return s.ResistanceFix
	case status.PropBonusDamages:
		return s.BonusDamages
	case status.PropBonusTickDamages:
		return s.BonusTickDamages
	case status.PropBonusTickHeal:
		return s.BonusTickHeal
	}
	return 0
}

// Float возвращает базовую долю свойства (прибавляется к 1.0 резолвером).
func (s *BaseStats) Float(p status.Property) float64 {
	switch p {
	case status.PropResistancePerc:
		return s.ResistancePerc
	case status.PropBonusDamagesPerc:
		return s.BonusDamagesPerc
	}
	return 0
}
