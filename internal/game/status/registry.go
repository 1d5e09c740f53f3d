package status

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// Target is the character a registry belongs to.
type Target interface {
	ObjectID() uint32
	IsAlive() bool
	Hit(amount int)
	Heal(amount int)
	SetCollision(enabled bool)
}

// Entry is the replicated view of one active effect.
type Entry struct {
	Type   EffectType
	Stacks int
}

// Replicator receives every authoritative change, in order, exactly once.
type Replicator interface {
	Append(t EffectType, stacks int, duration float64)
	Refresh(t EffectType, stacks int, duration float64)
	RemoveAt(index int, t EffectType, stacks int, reason RemoveReason)
	Clear(removed []Entry, reason RemoveReason)
	SetAnimation(a AnimationState)
	SetScalars(speed float64, shield int)
}

type nopReplicator struct{}

func (nopReplicator) Append(EffectType, int, float64)             {}
func (nopReplicator) Refresh(EffectType, int, float64)            {}
func (nopReplicator) RemoveAt(int, EffectType, int, RemoveReason) {}
func (nopReplicator) Clear([]Entry, RemoveReason)                {}
func (nopReplicator) SetAnimation(AnimationState)                {}
func (nopReplicator) SetScalars(float64, int)                    {}

// RegistryConfig wires a registry to its collaborators.
// Base, Bus and Replicator are optional.
type RegistryConfig struct {
	Target     Target
	Base       BaseStats
	Bus        *Bus
	Replicator Replicator
}

// Registry is the authoritative set of effects on one character.
//
// Not safe for concurrent use: all mutations must come from the character's
// simulation loop. Queries must not run concurrently with mutations either.
type Registry struct {
	target   Target
	bus      *Bus
	repl     Replicator
	resolver *Resolver

	effects []*Instance // insertion order == replicated order
	flags   Flags
	speed   float64
	shield  int
	seq     uint64
}

// NewRegistry creates an empty registry and the only Authority that can mutate it.
func NewRegistry(cfg RegistryConfig) (*Registry, *Authority) {
	r := &Registry{
		target: cfg.Target,
		bus:    cfg.Bus,
		repl:   cfg.Replicator,
		speed:  1,
	}
	if r.repl == nil {
		r.repl = nopReplicator{}
	}
	base := cfg.Base
	if base == nil {
		base = NoBaseStats{}
	}
	r.resolver = &Resolver{reg: r, base: base}
	return r, &Authority{reg: r}
}

// Add applies def to the character. An already-active type is refreshed and
// Add returns true. A failed initialization leaves the registry untouched.
func (r *Registry) Add(auth *Authority, def *Definition, caster Caster, ov Override) bool {
	if !auth.grants(r) {
		slog.Debug("add effect without authority ignored", "target", r.ObjectID())
		return false
	}
	if def == nil || !def.Type.Valid() {
		slog.Error("add effect with invalid definition", "target", r.ObjectID())
		return false
	}

	if idx := r.indexOf(def.Type); idx >= 0 {
		r.refresh(idx, ov)
		return true
	}

	in := NewInstance(def)
	if err := in.Initialize(r, caster, ov); err != nil {
		slog.Debug("effect not applied",
			"effect", def.Type,
			"target", r.ObjectID(),
			"caster", caster.ID,
			"err", err)
		return false
	}

	prev := r.flags.Animation
	r.effects = append(r.effects, in)
	r.repl.Append(def.Type, in.Stacks(), in.Remaining())
	if def.DisablesCollision {
		r.target.SetCollision(false)
	}
	r.publish(Event{Kind: EventAdded, Type: def.Type, Stacks: in.Stacks(), Duration: in.Remaining()})
	r.recompute(prev)

	slog.Debug("effect added",
		"effect", def.Type,
		"target", r.ObjectID(),
		"caster", caster.ID,
		"stacks", in.Stacks(),
		"duration", in.Remaining())
	return true
}

// refresh re-applies the active instance at idx per its stacking policy.
func (r *Registry) refresh(idx int, ov Override) {
	in := r.effects[idx]
	if !in.Refresh(ov.Stacks, ov) {
		return
	}
	prev := r.flags.Animation
	r.repl.Refresh(in.Type(), in.Stacks(), in.Remaining())
	r.publish(Event{Kind: EventAdded, Type: in.Type(), Stacks: in.Stacks(), Duration: in.Remaining()})
	r.recompute(prev)
}

// Remove explicitly ends an active effect and returns the stacks it had.
// Removing a type that is not active is a caller bug: it is logged, reported
// as ErrEffectNotFound, and nothing changes.
func (r *Registry) Remove(auth *Authority, t EffectType) (int, error) {
	if !auth.grants(r) {
		slog.Debug("remove effect without authority ignored", "target", r.ObjectID(), "effect", t)
		return 0, nil
	}
	idx := r.indexOf(t)
	if idx < 0 {
		err := fmt.Errorf("%w: %s on %d", ErrEffectNotFound, t, r.ObjectID())
		slog.Error("remove of inactive effect", "effect", t, "target", r.ObjectID(), "err", err)
		return 0, err
	}
	return r.removeAt(idx, ReasonExplicit), nil
}

func (r *Registry) removeAt(idx int, reason RemoveReason) int {
	prev := r.flags.Animation
	in := r.effects[idx]
	stacks := in.Stacks()

	r.publish(Event{Kind: EventRemoved, Type: in.Type(), Stacks: stacks, Reason: reason})
	in.markRemoved()
	r.effects = slices.Delete(r.effects, idx, idx+1)
	r.repl.RemoveAt(idx, in.Type(), stacks, reason)
	if in.def.DisablesCollision && !r.collisionDisabled() {
		r.target.SetCollision(true)
	}
	r.recompute(prev)

	slog.Debug("effect removed",
		"effect", in.Type(),
		"target", r.ObjectID(),
		"stacks", stacks,
		"reason", reason)
	return stacks
}

// Tick advances every active effect by dt seconds in insertion order and
// removes the ones that expired. It stops as soon as the character dies.
func (r *Registry) Tick(auth *Authority, dt float64) {
	if !auth.grants(r) {
		return
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		slog.Error("invalid tick delta ignored", "target", r.ObjectID(), "dt", dt)
		return
	}
	if dt == 0 || !r.IsAlive() || len(r.effects) == 0 {
		return
	}

	// Iterate a snapshot: entries removed while ticking (expiry, broken
	// shields, death) are skipped by state, never by index arithmetic.
	snapshot := slices.Clone(r.effects)
	for _, in := range snapshot {
		if !in.Is(StateActive) {
			continue
		}
		expired := in.advance(r, dt)
		if !r.IsAlive() {
			return
		}
		if !expired {
			continue
		}
		if idx := slices.Index(r.effects, in); idx >= 0 {
			r.removeAt(idx, ReasonExpired)
		}
	}

	// Shields and speed do not change with time alone, but periodic
	// damage may have eaten into a shield.
	r.recomputeScalars()
}

// Clear removes every effect in one step, publishing one Removed event per
// effect in authoritative order. Used on character death.
func (r *Registry) Clear(auth *Authority, reason RemoveReason) {
	if !auth.grants(r) || len(r.effects) == 0 {
		return
	}

	prev := r.flags.Animation
	removed := make([]Entry, 0, len(r.effects))
	restoreCollision := false
	for _, in := range r.effects {
		r.publish(Event{Kind: EventRemoved, Type: in.Type(), Stacks: in.Stacks(), Reason: reason})
		in.markRemoved()
		removed = append(removed, Entry{Type: in.Type(), Stacks: in.Stacks()})
		restoreCollision = restoreCollision || in.def.DisablesCollision
	}
	clear(r.effects)
	r.effects = r.effects[:0]
	r.repl.Clear(removed, reason)
	if restoreCollision {
		r.target.SetCollision(true)
	}
	r.recompute(prev)

	slog.Debug("effects cleared", "target", r.ObjectID(), "count", len(removed), "reason", reason)
}

// RemoveOnCast ends every effect that does not survive the start of a cast.
func (r *Registry) RemoveOnCast(auth *Authority) {
	if !auth.grants(r) {
		return
	}
	for i := len(r.effects) - 1; i >= 0; i-- {
		if r.effects[i].def.RemovedOnCast {
			r.removeAt(i, ReasonCancelled)
		}
	}
}

// HitShield absorbs damage with shield pools in insertion order and returns
// the unabsorbed part. Shield-only effects with an exhausted pool are removed.
func (r *Registry) HitShield(auth *Authority, damage int) int {
	if !auth.grants(r) {
		return damage
	}
	return r.hitShield(damage)
}

func (r *Registry) hitShield(damage int) int {
	if r.shield == 0 || damage <= 0 {
		return damage
	}
	for _, in := range r.effects {
		damage = in.HitShield(damage)
		if damage == 0 {
			break
		}
	}
	for i := len(r.effects) - 1; i >= 0; i-- {
		in := r.effects[i]
		if in.def.ShieldPolicy == ShieldRemoveOnBreak && in.Shield() == 0 {
			r.removeAt(i, ReasonShieldBroken)
		}
	}
	r.recomputeScalars()
	return damage
}

// TakeDamage runs incoming damage through resistance and shields and hits
// the character with the rest. Returns the damage actually dealt.
func (r *Registry) TakeDamage(auth *Authority, damage int) int {
	if !auth.grants(r) {
		return 0
	}
	if damage < 0 {
		slog.Error("negative damage ignored", "target", r.ObjectID(), "damage", damage)
		return 0
	}
	return r.takeDamage(damage)
}

func (r *Registry) takeDamage(damage int) int {
	damage = r.resolver.ApplyResistance(damage)
	damage = r.hitShield(damage)
	if damage > 0 {
		r.target.Hit(damage)
	}
	return damage
}

func (r *Registry) applyTickDamage(amount int) { r.takeDamage(amount) }
func (r *Registry) applyTickHeal(amount int)   { r.target.Heal(amount) }

// recompute refreshes the cached flags and replicated scalars and publishes
// an animation transition if the state changed since prev.
func (r *Registry) recompute(prev AnimationState) {
	r.flags = ComputeFlags(r)
	if r.flags.Animation != prev {
		r.repl.SetAnimation(r.flags.Animation)
		r.publish(Event{Kind: EventAnimationChanged, Animation: r.flags.Animation})
	}
	r.recomputeScalars()
}

func (r *Registry) recomputeScalars() {
	speed := r.resolver.Float(PropSpeedBonus)
	shield := 0
	for _, in := range r.effects {
		shield += in.Shield()
	}
	if speed == r.speed && shield == r.shield {
		return
	}
	r.speed, r.shield = speed, shield
	r.repl.SetScalars(speed, shield)
}

func (r *Registry) publish(e Event) {
	r.seq++
	e.Seq = r.seq
	e.Character = r.ObjectID()
	r.bus.Publish(e)
}

func (r *Registry) collisionDisabled() bool {
	for _, in := range r.effects {
		if in.def.DisablesCollision {
			return true
		}
	}
	return false
}

func (r *Registry) indexOf(t EffectType) int {
	for i, in := range r.effects {
		if in.Type() == t {
			return i
		}
	}
	return -1
}

// Has reports whether t is active. Available to any caller.
func (r *Registry) Has(t EffectType) bool {
	return r.indexOf(t) >= 0
}

// ObjectID returns the owning character's id.
func (r *Registry) ObjectID() uint32 {
	if r.target == nil {
		return 0
	}
	return r.target.ObjectID()
}

// IsAlive reports whether the owning character is alive.
func (r *Registry) IsAlive() bool {
	return r.target != nil && r.target.IsAlive()
}

// Bonuses returns the real resolver for the authority and Neutral for anyone else.
func (r *Registry) Bonuses(auth *Authority) Bonuses {
	if !auth.grants(r) {
		return Neutral{}
	}
	return r.resolver
}

// Types returns the active effect types in authoritative order.
func (r *Registry) Types() []EffectType {
	out := make([]EffectType, len(r.effects))
	for i, in := range r.effects {
		out[i] = in.Type()
	}
	return out
}

// Entries returns type and stacks of every active effect in authoritative order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.effects))
	for i, in := range r.effects {
		out[i] = Entry{Type: in.Type(), Stacks: in.Stacks()}
	}
	return out
}

// Instance returns the active instance of t, or nil.
func (r *Registry) Instance(t EffectType) *Instance {
	if idx := r.indexOf(t); idx >= 0 {
		return r.effects[idx]
	}
	return nil
}

func (r *Registry) Len() int { return len(r.effects) }

// Flags returns the derived flags cached at the last mutation.
func (r *Registry) Flags() Flags { return r.flags }

// SpeedBonus returns the replicated speed multiplier.
func (r *Registry) SpeedBonus() float64 { return r.speed }

// RemainingShield returns the replicated total of all shield pools.
func (r *Registry) RemainingShield() int { return r.shield }
