package status

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/looplab/fsm"
)

// LifecycleState is the state of an Instance.
type LifecycleState string

const (
	StateInitializing LifecycleState = "initializing"
	StateActive       LifecycleState = "active"
	StateExpiring     LifecycleState = "expiring"
	StateRemoved      LifecycleState = "removed"
)

const (
	eventActivate = "activate"
	eventAbort    = "abort"
	eventExpire   = "expire"
	eventRemove   = "remove"
)

// timeEpsilon absorbs float drift from summing fixed simulation steps.
const timeEpsilon = 1e-9

var lifecycleEvents = fsm.Events{
	{Name: eventActivate, Src: []string{string(StateInitializing)}, Dst: string(StateActive)},
	{Name: eventAbort, Src: []string{string(StateInitializing)}, Dst: string(StateRemoved)},
	{Name: eventExpire, Src: []string{string(StateActive)}, Dst: string(StateExpiring)},
	{Name: eventRemove, Src: []string{string(StateActive), string(StateExpiring)}, Dst: string(StateRemoved)},
}

// Caster identifies who applied an effect. Bonuses, when set, are the
// caster's own resolver and feed the BonusTick* properties of periodic effects.
type Caster struct {
	ID      uint32
	Bonuses Bonuses
}

// Override carries per-application values that replace definition defaults.
type Override struct {
	Stacks      int     // 0 means a single stack
	Duration    float64 // used only when HasDuration is set; Infinite allowed
	HasDuration bool
	ExtraSpeed  float64 // extra SpeedBonus fraction for this application only
}

// WithDuration returns an Override that forces the given duration.
func WithDuration(stacks int, duration float64) Override {
	return Override{Stacks: stacks, Duration: duration, HasDuration: true}
}

// host is the side of the registry an instance may call back into.
type host interface {
	ObjectID() uint32
	IsAlive() bool
	Has(EffectType) bool
	applyTickDamage(amount int)
	applyTickHeal(amount int)
}

// Instance is a live application of a Definition on one character.
type Instance struct {
	def    *Definition
	target uint32
	caster Caster

	stacks    int
	duration  float64
	remaining float64
	shield    int
	elapsed   float64
	extra     []Modifier

	lc *fsm.FSM
}

// NewInstance creates an instance in the Initializing state.
func NewInstance(def *Definition) *Instance {
	return &Instance{
		def: def,
		lc:  fsm.NewFSM(string(StateInitializing), lifecycleEvents, fsm.Callbacks{}),
	}
}

// Initialize validates the instance against its target and activates it.
// On failure the instance goes straight to Removed and must be discarded.
func (in *Instance) Initialize(h host, caster Caster, ov Override) error {
	if !h.IsAlive() {
		in.transition(eventAbort)
		return ErrTargetDead
	}
	for _, b := range in.def.BlockedBy {
		if h.Has(b) {
			in.transition(eventAbort)
			return fmt.Errorf("%w: %s blocked by %s", ErrImmune, in.def.Type, b)
		}
	}

	in.target = h.ObjectID()
	in.caster = caster
	in.stacks = clampStacks(ov.Stacks, in.def.MaxStacks)
	in.duration = in.def.Duration
	if ov.HasDuration {
		in.duration = ov.Duration
	}
	in.remaining = in.duration
	in.shield = in.def.Shield
	if ov.ExtraSpeed != 0 {
		in.extra = append(in.extra, Modifier{Property: PropSpeedBonus, Value: ov.ExtraSpeed, Mode: ModePercentage})
	}

	in.transition(eventActivate)
	return nil
}

// Refresh re-applies an active instance according to its stacking policy.
// Returns false when the policy ignores re-application.
func (in *Instance) Refresh(stacks int, ov Override) bool {
	if !in.Is(StateActive) {
		return false
	}

	switch in.def.Stacking {
	case StackIgnore:
		return false
	case StackAdditive:
		in.stacks = clampStacks(in.stacks+max(stacks, 1), in.def.MaxStacks)
	}

	if ov.HasDuration {
		in.duration = ov.Duration
	}
	if in.duration >= 0 {
		switch in.def.RefreshMode {
		case RefreshExtend:
			in.remaining += in.duration
			if in.def.MaxDuration > 0 && in.remaining > in.def.MaxDuration {
				in.remaining = in.def.MaxDuration
			}
		default:
			in.remaining = in.duration
		}
	} else {
		in.remaining = Infinite
	}
	in.shield = in.def.Shield
	return true
}

// advance moves the timer and periodic behaviour forward by dt seconds.
// Returns true when a finite duration ran out and the instance entered Expiring.
func (in *Instance) advance(h host, dt float64) bool {
	if dt <= 0 || !in.Is(StateActive) {
		return false
	}

	active := dt
	if !in.Infinite() {
		active = min(dt, in.remaining)
		in.remaining -= dt
	}
	in.runPeriodic(h, active)

	if in.Infinite() || !in.Is(StateActive) {
		return false
	}
	if in.remaining <= timeEpsilon {
		in.remaining = 0
		in.transition(eventExpire)
		return true
	}
	return false
}

func (in *Instance) runPeriodic(h host, dt float64) {
	interval := in.def.TickInterval
	if interval <= 0 {
		return
	}
	in.elapsed += dt
	for in.elapsed+timeEpsilon >= interval {
		in.elapsed -= interval
		if !h.IsAlive() || !in.Is(StateActive) {
			return
		}
		if dmg := in.tickValue(PropTickDamages); dmg > 0 {
			h.applyTickDamage(dmg)
		}
		if !h.IsAlive() || !in.Is(StateActive) {
			return
		}
		if heal := in.tickValue(PropTickHeal); heal > 0 {
			h.applyTickHeal(heal)
		}
	}
}

// tickValue is the per-tick amount of a periodic property with the caster's bonus applied.
func (in *Instance) tickValue(p Property) int {
	base := in.Int(p)
	if base <= 0 {
		return 0
	}
	if in.caster.Bonuses != nil {
		return in.caster.Bonuses.ApplyBonusInt(base, p)
	}
	return base
}

// markRemoved finalizes the instance. Safe to call from Active or Expiring.
func (in *Instance) markRemoved() {
	if in.lc.Can(eventRemove) {
		in.transition(eventRemove)
	}
}

func (in *Instance) transition(event string) {
	if err := in.lc.Event(context.Background(), event); err != nil {
		slog.Error("effect lifecycle transition rejected",
			"effect", in.def.Type,
			"target", in.target,
			"event", event,
			"state", in.lc.Current(),
			"err", err)
	}
}

// HitShield absorbs damage with the remaining shield pool and returns what is left.
func (in *Instance) HitShield(damage int) int {
	if damage <= 0 || in.shield <= 0 {
		return damage
	}
	absorbed := min(damage, in.shield)
	in.shield -= absorbed
	return damage - absorbed
}

// Float folds the Percentage modifiers of p, scaled by stacks.
func (in *Instance) Float(p Property) float64 {
	var v float64
	for _, m := range in.def.Modifiers {
		if m.Property == p && m.Mode == ModePercentage {
			v += m.Value * float64(in.stacks)
		}
	}
	for _, m := range in.extra {
		if m.Property == p && m.Mode == ModePercentage {
			v += m.Value
		}
	}
	return v
}

// Int folds the Additive modifiers of p, scaled by stacks.
func (in *Instance) Int(p Property) int {
	var v float64
	for _, m := range in.def.Modifiers {
		if m.Property == p && m.Mode == ModeAdditive {
			v += m.Value * float64(in.stacks)
		}
	}
	for _, m := range in.extra {
		if m.Property == p && m.Mode == ModeAdditive {
			v += m.Value
		}
	}
	return int(math.RoundToEven(v))
}

// HasProperty reports whether the instance contributes to p.
func (in *Instance) HasProperty(p Property) bool {
	if in.def.HasProperty(p) {
		return true
	}
	for _, m := range in.extra {
		if m.Property == p {
			return true
		}
	}
	return false
}

func (in *Instance) Type() EffectType        { return in.def.Type }
func (in *Instance) Definition() *Definition { return in.def }
func (in *Instance) Target() uint32          { return in.target }
func (in *Instance) Caster() uint32          { return in.caster.ID }
func (in *Instance) Stacks() int             { return in.stacks }
func (in *Instance) Shield() int             { return in.shield }

// Remaining returns the remaining duration in seconds, Infinite for no expiry.
func (in *Instance) Remaining() float64 { return in.remaining }

// Infinite reports whether this application never expires by itself.
func (in *Instance) Infinite() bool { return in.duration < 0 }

// State returns the current lifecycle state.
func (in *Instance) State() LifecycleState { return LifecycleState(in.lc.Current()) }

// Is reports whether the instance is in state s.
func (in *Instance) Is(s LifecycleState) bool { return in.lc.Is(string(s)) }

func clampStacks(n, limit int) int {
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}
