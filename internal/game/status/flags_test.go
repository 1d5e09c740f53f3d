package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type set map[EffectType]bool

func (s set) Has(t EffectType) bool { return s[t] }

func TestComputeFlags(t *testing.T) {
	tests := []struct {
		name    string
		active  set
		want    Flags
		canMove bool
		canCast bool
	}{
		{"nothing", set{}, Flags{}, true, true},
		{"stun", set{EffectStun: true}, Flags{Stunned: true, Animation: AnimationStun}, false, false},
		{"scorched stuns", set{EffectScorched: true}, Flags{Stunned: true, Animation: AnimationStun}, false, false},
		{"silence", set{EffectSilence: true}, Flags{Silenced: true, Animation: AnimationSilenced}, true, false},
		{"malediction silences", set{EffectMalediction: true}, Flags{Silenced: true, Animation: AnimationSilenced}, true, false},
		{"frozen", set{EffectFrozen: true}, Flags{Animation: AnimationFrozen}, false, false},
		{"frozen beats stun", set{EffectFrozen: true, EffectStun: true}, Flags{Stunned: true, Animation: AnimationFrozen}, false, false},
		{"stun beats silence", set{EffectStun: true, EffectSilence: true}, Flags{Stunned: true, Silenced: true, Animation: AnimationStun}, false, false},
		{"invisible", set{EffectInvisible: true}, Flags{Untargetable: true}, true, true},
		{"jump", set{EffectJump: true}, Flags{Untargetable: true}, true, true},
		{"unrelated", set{EffectHaste: true, EffectArmor: true}, Flags{}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFlags(tt.active)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.canMove, got.CanMove())
			assert.Equal(t, tt.canCast, got.CanCast())
		})
	}
}

func TestAnimationState_String(t *testing.T) {
	assert.Equal(t, "Frozen", AnimationFrozen.String())
	assert.Equal(t, "AnimationState(9)", AnimationState(9).String())
}
