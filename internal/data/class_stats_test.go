package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/auracore/internal/game/status"
)

func TestLoadClassTemplates(t *testing.T) {
	require.NoError(t, LoadClassTemplates())

	for _, c := range []ClassID{ClassWarrior, ClassMage, ClassRogue} {
		tmpl := GetClassTemplate(c)
		require.NotNil(t, tmpl, "template for %s", c)
		assert.Equal(t, 50, tmpl.MaxHP(1), "level 1 starts at the initial pool")
	}
	assert.Nil(t, GetClassTemplate(ClassID(42)))
}

func TestClassTemplate_Scaling(t *testing.T) {
	require.NoError(t, LoadClassTemplates())
	w := GetClassTemplate(ClassWarrior)

	assert.Equal(t, 50+12*9, w.MaxHP(10))
	assert.Equal(t, 50, w.MaxHP(0), "levels below one count as one")

	s := w.Stats(5)
	assert.Equal(t, 2+2, s.Int(status.PropResistanceFix))
	assert.Equal(t, 1+1, s.Int(status.PropBonusDamages))
	assert.InDelta(t, -0.1, s.Float(status.PropResistancePerc), 1e-12)
	assert.Zero(t, s.Float(status.PropSpeedBonus))
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		in      string
		want    ClassID
		wantErr bool
	}{
		{"Warrior", ClassWarrior, false},
		{"Mage", ClassMage, false},
		{"Rogue", ClassRogue, false},
		{"Paladin", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClass(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}
