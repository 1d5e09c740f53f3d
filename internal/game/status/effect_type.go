package status

import "fmt"

// EffectType identifies a status effect. Values are stable wire codes:
// never renumber an existing entry, only append.
type EffectType uint16

const (
	EffectNone EffectType = iota // invalid, never stored
	EffectStun
	EffectScorched
	EffectSilence
	EffectMalediction
	EffectInvisible
	EffectJump
	EffectFrozen
	EffectSlow
	EffectHaste
	EffectShield
	EffectPoison
	EffectRegeneration
	EffectRage
	EffectArmor
	EffectVulnerable
	EffectUnstoppable

	effectTypeCount
)

var effectTypeLabels = [effectTypeCount]string{
	EffectNone:         "None",
	EffectStun:         "Stun",
	EffectScorched:     "Scorched",
	EffectSilence:      "Silence",
	EffectMalediction:  "Malediction",
	EffectInvisible:    "Invisible",
	EffectJump:         "Jump",
	EffectFrozen:       "Frozen",
	EffectSlow:         "Slow",
	EffectHaste:        "Haste",
	EffectShield:       "Shield",
	EffectPoison:       "Poison",
	EffectRegeneration: "Regeneration",
	EffectRage:         "Rage",
	EffectArmor:        "Armor",
	EffectVulnerable:   "Vulnerable",
	EffectUnstoppable:  "Unstoppable",
}

// String returns a debug label. Labels are never used as replication keys.
func (t EffectType) String() string {
	if t < effectTypeCount {
		return effectTypeLabels[t]
	}
	return fmt.Sprintf("EffectType(%d)", uint16(t))
}

// Valid reports whether t is a known, non-zero effect type.
func (t EffectType) Valid() bool {
	return t > EffectNone && t < effectTypeCount
}

// ParseEffectType resolves a label from catalog or config files.
func ParseEffectType(label string) (EffectType, error) {
	for i := EffectStun; i < effectTypeCount; i++ {
		if effectTypeLabels[i] == label {
			return i, nil
		}
	}
	return EffectNone, fmt.Errorf("%w: %q", ErrUnknownEffect, label)
}

// AllEffectTypes returns every valid effect type in code order.
func AllEffectTypes() []EffectType {
	out := make([]EffectType, 0, effectTypeCount-1)
	for i := EffectStun; i < effectTypeCount; i++ {
		out = append(out, i)
	}
	return out
}
