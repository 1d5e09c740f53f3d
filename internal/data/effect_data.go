package data

import "github.com/udisondev/auracore/internal/game/status"

// effectDef: Go-литерал определения эффекта (встроенный каталог).
type effectDef struct {
	typ          status.EffectType
	stacking     status.StackingPolicy
	maxStacks    int
	duration     float64
	refresh      status.RefreshMode
	maxDuration  float64
	shield       int
	shieldPolicy status.ShieldPolicy
	tickInterval float64
	noCollision  bool
	removeOnCast bool
	blockedBy    []status.EffectType
	mods         []status.Modifier
}

func add(p status.Property, v float64) status.Modifier {
	return status.Modifier{Property: p, Value: v, Mode: status.ModeAdditive}
}

func perc(p status.Property, v float64) status.Modifier {
	return status.Modifier{Property: p, Value: v, Mode: status.ModePercentage}
}

var controlImmunity = []status.EffectType{status.EffectUnstoppable}

// effectDefs: встроенный каталог эффектов.
// Percentage-модификаторы хранятся как доля: -0.5 = множитель 0.5.
var effectDefs = []effectDef{
	{typ: status.EffectStun, maxStacks: 1, duration: 2, blockedBy: controlImmunity},
	{
		typ: status.EffectScorched, maxStacks: 1, duration: 1.5, tickInterval: 0.5,
		blockedBy: controlImmunity,
		mods:      []status.Modifier{add(status.PropTickDamages, 3)},
	},
	{typ: status.EffectSilence, maxStacks: 1, duration: 3, blockedBy: controlImmunity},
	{
		typ: status.EffectMalediction, stacking: status.StackAdditive, maxStacks: 3, duration: 5,
		refresh: status.RefreshExtend, maxDuration: 10,
		mods: []status.Modifier{perc(status.PropResistancePerc, 0.1)},
	},
	{typ: status.EffectInvisible, maxStacks: 1, duration: 4, removeOnCast: true},
	{typ: status.EffectJump, stacking: status.StackIgnore, maxStacks: 1, duration: status.Infinite, noCollision: true},
	{
		typ: status.EffectFrozen, maxStacks: 1, duration: 2, blockedBy: controlImmunity,
		mods: []status.Modifier{perc(status.PropSpeedBonus, -1)},
	},
	{
		typ: status.EffectSlow, stacking: status.StackAdditive, maxStacks: 3, duration: 3,
		mods: []status.Modifier{perc(status.PropSpeedBonus, -0.15)},
	},
	{typ: status.EffectHaste, maxStacks: 1, duration: 4, mods: []status.Modifier{perc(status.PropSpeedBonus, 0.3)}},
	{typ: status.EffectShield, maxStacks: 1, duration: 6, shield: 20, shieldPolicy: status.ShieldRemoveOnBreak},
	{
		typ: status.EffectPoison, stacking: status.StackAdditive, maxStacks: 5, duration: 6, tickInterval: 1,
		mods: []status.Modifier{add(status.PropTickDamages, 2)},
	},
	{
		typ: status.EffectRegeneration, maxStacks: 1, duration: 5, tickInterval: 1,
		mods: []status.Modifier{add(status.PropTickHeal, 3)},
	},
	{
		typ: status.EffectRage, stacking: status.StackAdditive, maxStacks: 3, duration: 8,
		mods: []status.Modifier{
			add(status.PropBonusDamages, 5),
			perc(status.PropBonusDamagesPerc, 0.1),
			add(status.PropBonusTickDamages, 1),
		},
	},
	{
		typ: status.EffectArmor, maxStacks: 1, duration: status.Infinite,
		mods: []status.Modifier{add(status.PropResistanceFix, 10), perc(status.PropResistancePerc, -0.5)},
	},
	{
		typ: status.EffectVulnerable, maxStacks: 1, duration: 4,
		mods: []status.Modifier{add(status.PropResistanceFix, -5), perc(status.PropResistancePerc, 0.25)},
	},
	{typ: status.EffectUnstoppable, maxStacks: 1, duration: 3},
}

func (d *effectDef) definition() status.Definition {
	return status.Definition{
		Type:              d.typ,
		Stacking:          d.stacking,
		MaxStacks:         d.maxStacks,
		Duration:          d.duration,
		RefreshMode:       d.refresh,
		MaxDuration:       d.maxDuration,
		Modifiers:         d.mods,
		Shield:            d.shield,
		ShieldPolicy:      d.shieldPolicy,
		TickInterval:      d.tickInterval,
		DisablesCollision: d.noCollision,
		RemovedOnCast:     d.removeOnCast,
		BlockedBy:         d.blockedBy,
	}
}
