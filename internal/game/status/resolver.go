package status

import "math"

// BaseStats is the static stat source of a character.
type BaseStats interface {
	Int(p Property) int
	Float(p Property) float64
}

// NoBaseStats contributes nothing.
type NoBaseStats struct{}

func (NoBaseStats) Int(Property) int       { return 0 }
func (NoBaseStats) Float(Property) float64 { return 0 }

// Bonuses is the combat-math surface. The authority gets a Resolver;
// everybody else gets Neutral.
type Bonuses interface {
	Float(p Property) float64
	Int(p Property) int
	ApplyResistance(damage int) int
	ApplyBonusDamages(damage int) int
	ApplyBonus(base float64, p Property) float64
	ApplyBonusInt(base int, p Property) int
}

// Resolver folds base stats and the registry's active effects into derived values.
// It holds no state of its own; every query reads the current registry.
type Resolver struct {
	reg  *Registry
	base BaseStats
}

// Float returns a multiplier: 1 + base fraction + sum of Percentage modifiers.
// SpeedBonus always starts from a pure 1.0, ignoring base stats.
func (rv *Resolver) Float(p Property) float64 {
	v := 1.0
	if p != PropSpeedBonus {
		v += rv.base.Float(p)
	}
	for _, in := range rv.reg.effects {
		if !in.HasProperty(p) {
			continue
		}
		v += in.Float(p)
	}
	return v
}

// Int returns the base value plus the sum of Additive modifiers.
func (rv *Resolver) Int(p Property) int {
	v := rv.base.Int(p)
	for _, in := range rv.reg.effects {
		if !in.HasProperty(p) {
			continue
		}
		v += in.Int(p)
	}
	return v
}

func (rv *Resolver) ApplyResistance(damage int) int {
	return applyResistance(rv, damage)
}

func (rv *Resolver) ApplyBonusDamages(damage int) int {
	return applyBonusDamages(rv, damage)
}

func (rv *Resolver) ApplyBonus(base float64, p Property) float64 {
	return applyBonus(rv, base, p)
}

func (rv *Resolver) ApplyBonusInt(base int, p Property) int {
	return applyBonusInt(rv, base, p)
}

// Neutral answers every query with the values of a character with no effects
// and no base stats. Non-authoritative callers get this.
type Neutral struct{}

func (Neutral) Float(Property) float64 { return 1 }
func (Neutral) Int(Property) int       { return 0 }

func (n Neutral) ApplyResistance(damage int) int   { return applyResistance(n, damage) }
func (n Neutral) ApplyBonusDamages(damage int) int { return applyBonusDamages(n, damage) }

func (n Neutral) ApplyBonus(base float64, p Property) float64 { return applyBonus(n, base, p) }
func (n Neutral) ApplyBonusInt(base int, p Property) int      { return applyBonusInt(n, base, p) }

type folder interface {
	Float(p Property) float64
	Int(p Property) int
}

// applyResistance subtracts the flat resistance first, then applies the
// percentage factor. The order is part of the balancing contract.
func applyResistance(f folder, damage int) int {
	damage = max(0, damage-f.Int(PropResistanceFix))
	return round(float64(damage) * f.Float(PropResistancePerc))
}

// applyBonusDamages adds the flat bonus first (floored at zero), then the percentage.
func applyBonusDamages(f folder, damage int) int {
	damage = max(0, damage+f.Int(PropBonusDamages))
	return round(float64(damage) * f.Float(PropBonusDamagesPerc))
}

// applyBonus adds the flat per-tick bonus for periodic properties and the
// property's Float value otherwise.
func applyBonus(f folder, base float64, p Property) float64 {
	switch p {
	case PropTickDamages:
		return base + float64(f.Int(PropBonusTickDamages))
	case PropTickHeal:
		return base + float64(f.Int(PropBonusTickHeal))
	}
	return base + f.Float(p)
}

func applyBonusInt(f folder, base int, p Property) int {
	return max(0, round(applyBonus(f, float64(base), p)))
}

// round matches the half-to-even rounding of the balancing tools.
func round(v float64) int {
	return int(math.RoundToEven(v))
}
