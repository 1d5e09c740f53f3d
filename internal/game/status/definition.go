package status

import (
	"errors"
	"fmt"
)

// Infinite is the duration sentinel for effects that never expire on their own.
const Infinite = -1.0

// StackingPolicy decides what a second Add of an active type does.
type StackingPolicy int8

const (
	StackRefresh  StackingPolicy = iota // refresh duration, keep stacks
	StackAdditive                       // add stacks up to MaxStacks, refresh duration
	StackIgnore                         // keep the running instance untouched
)

func (p StackingPolicy) String() string {
	switch p {
	case StackRefresh:
		return "Refresh"
	case StackAdditive:
		return "StackAdditive"
	case StackIgnore:
		return "Ignore"
	default:
		return fmt.Sprintf("StackingPolicy(%d)", int8(p))
	}
}

// ParseStackingPolicy resolves a stacking policy label.
func ParseStackingPolicy(label string) (StackingPolicy, error) {
	switch label {
	case "", "Refresh":
		return StackRefresh, nil
	case "StackAdditive":
		return StackAdditive, nil
	case "Ignore":
		return StackIgnore, nil
	}
	return 0, fmt.Errorf("unknown stacking policy %q", label)
}

// RefreshMode decides how a refresh changes the remaining duration.
type RefreshMode int8

const (
	RefreshReset  RefreshMode = iota // remaining = full duration
	RefreshExtend                    // remaining += full duration, capped by MaxDuration
)

// ParseRefreshMode resolves a refresh mode label.
func ParseRefreshMode(label string) (RefreshMode, error) {
	switch label {
	case "", "Reset":
		return RefreshReset, nil
	case "Extend":
		return RefreshExtend, nil
	}
	return 0, fmt.Errorf("unknown refresh mode %q", label)
}

func (m RefreshMode) String() string {
	if m == RefreshExtend {
		return "Extend"
	}
	return "Reset"
}

// ShieldPolicy decides whether a broken shield removes its effect.
type ShieldPolicy int8

const (
	ShieldKeep           ShieldPolicy = iota // instance stays until it expires
	ShieldRemoveOnBreak                      // shield-only effect, removed when the pool hits zero
)

// ParseShieldPolicy resolves a shield policy label.
func ParseShieldPolicy(label string) (ShieldPolicy, error) {
	switch label {
	case "", "Keep":
		return ShieldKeep, nil
	case "RemoveOnBreak":
		return ShieldRemoveOnBreak, nil
	}
	return 0, fmt.Errorf("unknown shield policy %q", label)
}

func (p ShieldPolicy) String() string {
	if p == ShieldRemoveOnBreak {
		return "RemoveOnBreak"
	}
	return "Keep"
}

// Definition is the immutable description of one effect type.
// Definitions are loaded once and shared by every instance of the type.
type Definition struct {
	Type         EffectType
	Stacking     StackingPolicy
	MaxStacks    int
	Duration     float64 // seconds, Infinite for no expiry
	RefreshMode  RefreshMode
	MaxDuration  float64 // cap for RefreshExtend, 0 = uncapped
	Modifiers    []Modifier
	Shield       int
	ShieldPolicy ShieldPolicy
	TickInterval float64 // seconds between periodic ticks, 0 = none

	// DisablesCollision turns the character's physical collision off while active.
	DisablesCollision bool
	// RemovedOnCast ends the effect as soon as the character starts casting.
	RemovedOnCast bool
	// BlockedBy lists active effects that make the target immune to this one.
	BlockedBy []EffectType
}

// Infinite reports whether the definition never expires by itself.
func (d *Definition) Infinite() bool {
	return d.Duration < 0
}

// HasProperty reports whether any modifier targets p.
func (d *Definition) HasProperty(p Property) bool {
	for _, m := range d.Modifiers {
		if m.Property == p {
			return true
		}
	}
	return false
}

// Validate checks the definition for values the engine cannot run with.
func (d *Definition) Validate() error {
	var errs []error
	if !d.Type.Valid() {
		errs = append(errs, fmt.Errorf("invalid type %d", d.Type))
	}
	if d.MaxStacks < 1 {
		errs = append(errs, fmt.Errorf("max stacks %d < 1", d.MaxStacks))
	}
	if d.Duration < 0 && d.Duration != Infinite {
		errs = append(errs, fmt.Errorf("duration %v is neither positive nor infinite", d.Duration))
	}
	if d.Duration == 0 {
		errs = append(errs, errors.New("zero duration"))
	}
	if d.Shield < 0 {
		errs = append(errs, fmt.Errorf("negative shield %d", d.Shield))
	}
	if d.ShieldPolicy == ShieldRemoveOnBreak && d.Shield == 0 {
		errs = append(errs, errors.New("shield policy RemoveOnBreak without a shield pool"))
	}
	if d.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("negative tick interval %v", d.TickInterval))
	}
	for i, m := range d.Modifiers {
		if !m.Property.Valid() {
			errs = append(errs, fmt.Errorf("modifier %d: invalid property %d", i, m.Property))
		}
	}
	if d.Type == EffectJump && !d.DisablesCollision {
		errs = append(errs, errors.New("jump must disable collision"))
	}
	for _, b := range d.BlockedBy {
		if b == d.Type {
			errs = append(errs, errors.New("effect blocks itself"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("definition %s: %w", d.Type, errors.Join(errs...))
	}
	return nil
}
