package status

import "fmt"

// AnimationState is the control state animation systems react to.
type AnimationState uint8

const (
	AnimationNone AnimationState = iota
	AnimationSilenced
	AnimationStun
	AnimationFrozen
)

func (a AnimationState) String() string {
	switch a {
	case AnimationNone:
		return "None"
	case AnimationSilenced:
		return "Silenced"
	case AnimationStun:
		return "Stun"
	case AnimationFrozen:
		return "Frozen"
	default:
		return fmt.Sprintf("AnimationState(%d)", uint8(a))
	}
}

// Membership is anything that can answer "is this effect active".
// Both the authoritative Registry and a replicated mirror satisfy it.
type Membership interface {
	Has(EffectType) bool
}

func IsStunned(m Membership) bool {
	return m.Has(EffectStun) || m.Has(EffectScorched)
}

func IsSilenced(m Membership) bool {
	return m.Has(EffectSilence) || m.Has(EffectMalediction)
}

func IsUntargetable(m Membership) bool {
	return m.Has(EffectInvisible) || m.Has(EffectJump)
}

// Animation resolves the animation state. First match wins:
// Frozen, then Stun, then Silenced.
func Animation(m Membership) AnimationState {
	switch {
	case m.Has(EffectFrozen):
		return AnimationFrozen
	case IsStunned(m):
		return AnimationStun
	case IsSilenced(m):
		return AnimationSilenced
	default:
		return AnimationNone
	}
}

// Flags is a snapshot of every derived control flag.
type Flags struct {
	Stunned      bool
	Silenced     bool
	Untargetable bool
	Animation    AnimationState
}

// ComputeFlags evaluates all derived flags over m.
func ComputeFlags(m Membership) Flags {
	return Flags{
		Stunned:      IsStunned(m),
		Silenced:     IsSilenced(m),
		Untargetable: IsUntargetable(m),
		Animation:    Animation(m),
	}
}

// CanMove reports whether movement is allowed.
func (f Flags) CanMove() bool {
	return !f.Stunned && f.Animation != AnimationFrozen
}

// CanCast reports whether spell casting is allowed.
func (f Flags) CanCast() bool {
	return f.CanMove() && !f.Silenced
}
