package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/auracore/internal/data"
	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/testutil"
)

func TestResolver_NoEffects(t *testing.T) {
	c := testutil.NewCombatant(t)
	b := c.State.Bonuses(c.Auth)

	for _, p := range []status.Property{status.PropSpeedBonus, status.PropResistancePerc, status.PropBonusDamagesPerc} {
		assert.InDelta(t, 1, b.Float(p), 1e-12, p.String())
	}
	assert.Zero(t, b.Int(status.PropResistanceFix))
	assert.Equal(t, 100, b.ApplyResistance(100))
	assert.Equal(t, 100, b.ApplyBonusDamages(100))
}

func TestResolver_BaseStats(t *testing.T) {
	require.NoError(t, data.LoadClassTemplates())
	base := data.GetClassTemplate(data.ClassWarrior).Stats(5)

	c := testutil.NewCombatantWith(t, testutil.Fixtures.TargetID, 100, base)
	b := c.State.Bonuses(c.Auth)

	assert.Equal(t, 4, b.Int(status.PropResistanceFix))
	assert.InDelta(t, 0.9, b.Float(status.PropResistancePerc), 1e-12)

	c.Add(status.EffectArmor)
	assert.Equal(t, 14, b.Int(status.PropResistanceFix), "resolver reads the live registry")
	assert.Equal(t, 34, b.ApplyResistance(100), "(100 - 14) * 0.4 = 34.4")

	c.Add(status.EffectHaste)
	assert.InDelta(t, 1.3, c.State.SpeedBonus(), 1e-12, "speed never includes base stats")
}

func TestResolver_ApplyBonusDamages(t *testing.T) {
	c := testutil.NewCombatant(t)
	c.State.AddEffect(c.Auth, status.EffectRage, testutil.Caster(), status.Override{Stacks: 2})
	b := c.State.Bonuses(c.Auth)

	assert.Equal(t, 10, b.Int(status.PropBonusDamages))
	assert.InDelta(t, 1.2, b.Float(status.PropBonusDamagesPerc), 1e-12)
	assert.Equal(t, 36, b.ApplyBonusDamages(20), "(20 + 10) * 1.2")
	assert.Equal(t, 12, b.ApplyBonusDamages(0))
}

func TestResolver_NegativeFlatResistance(t *testing.T) {
	c := testutil.NewCombatant(t)
	c.State.AddEffect(c.Auth, status.EffectVulnerable, testutil.Caster(), status.Override{})
	b := c.State.Bonuses(c.Auth)

	// Negative flat resistance adds to incoming damage.
	assert.Equal(t, -5, b.Int(status.PropResistanceFix))
	assert.Equal(t, 19, b.ApplyResistance(10), "(10 + 5) * 1.25 = 18.75")
}

func TestResolver_ApplyBonus(t *testing.T) {
	c := testutil.NewCombatant(t)
	c.State.AddEffect(c.Auth, status.EffectRage, testutil.Caster(), status.Override{Stacks: 3})
	c.State.AddEffect(c.Auth, status.EffectSlow, testutil.Caster(), status.Override{})
	b := c.State.Bonuses(c.Auth)

	tests := []struct {
		name string
		base float64
		prop status.Property
		want float64
	}{
		{"tick damage adds flat bonus", 2, status.PropTickDamages, 5},
		{"tick heal without bonus", 3, status.PropTickHeal, 3},
		{"general case adds the property value", 10, status.PropSpeedBonus, 10.85},
		{"percentage property", 10, status.PropBonusDamagesPerc, 11.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, b.ApplyBonus(tt.base, tt.prop), 1e-9)
		})
	}

	assert.Equal(t, 5, b.ApplyBonusInt(2, status.PropTickDamages))
	assert.Equal(t, 0, status.Neutral{}.ApplyBonusInt(-4, status.PropTickDamages), "clamped at zero")
}

func TestNeutral(t *testing.T) {
	var n status.Neutral
	assert.InDelta(t, 1, n.Float(status.PropResistancePerc), 1e-12)
	assert.Zero(t, n.Int(status.PropResistanceFix))
	assert.Equal(t, 100, n.ApplyResistance(100))
	assert.Equal(t, 7, n.ApplyBonusInt(7, status.PropTickDamages))
	assert.InDelta(t, 5, n.ApplyBonus(4, status.PropSpeedBonus), 1e-12)
}
