package status

import (
	"fmt"
	"log/slog"
)

// Catalog resolves effect types to their definitions.
type Catalog interface {
	Lookup(t EffectType) (*Definition, bool)
}

// Character is the entity a CombatState is attached to.
type Character interface {
	Target
	// OnDeath registers fn to run once when the character dies.
	OnDeath(fn func())
}

// CombatStateConfig wires one character's combat state. Base, Bus and
// Replicator are optional.
type CombatStateConfig struct {
	Character  Character
	Base       BaseStats
	Catalog    Catalog
	Bus        *Bus
	Replicator Replicator
}

// CombatState owns the effect registry of one character and the operations
// other subsystems (movement, casting, life, spells) use.
type CombatState struct {
	char    Character
	catalog Catalog
	reg     *Registry
	auth    *Authority // kept for the death hook only, never handed out
}

// NewCombatState creates the combat state of one character and returns the
// authority token for it. Callers that only observe should drop the token.
func NewCombatState(cfg CombatStateConfig) (*CombatState, *Authority) {
	reg, auth := NewRegistry(RegistryConfig{
		Target:     cfg.Character,
		Base:       cfg.Base,
		Bus:        cfg.Bus,
		Replicator: cfg.Replicator,
	})
	s := &CombatState{
		char:    cfg.Character,
		catalog: cfg.Catalog,
		reg:     reg,
		auth:    auth,
	}
	cfg.Character.OnDeath(func() {
		s.reg.Clear(s.auth, ReasonDeath)
	})
	return s, auth
}

// AddEffect applies the catalog definition of t.
func (s *CombatState) AddEffect(auth *Authority, t EffectType, caster Caster, ov Override) bool {
	if !auth.grants(s.reg) {
		return false
	}
	def, err := s.definition(t)
	if err != nil {
		slog.Error("add effect", "target", s.char.ObjectID(), "err", err)
		return false
	}
	return s.reg.Add(auth, def, caster, ov)
}

// RemoveEffect removes t and returns its stack count.
func (s *CombatState) RemoveEffect(auth *Authority, t EffectType) (int, error) {
	return s.reg.Remove(auth, t)
}

// Tick advances all effects by dt seconds.
func (s *CombatState) Tick(auth *Authority, dt float64) {
	s.reg.Tick(auth, dt)
}

// SetJump starts or ends a jump. The Jump effect disables physical collision
// while it is active.
func (s *CombatState) SetJump(auth *Authority, on bool) {
	if !auth.grants(s.reg) {
		return
	}
	if on {
		s.AddEffect(auth, EffectJump, Caster{ID: s.char.ObjectID()}, WithDuration(1, Infinite))
		return
	}
	if s.reg.Has(EffectJump) {
		if _, err := s.reg.Remove(auth, EffectJump); err != nil {
			slog.Error("end jump", "target", s.char.ObjectID(), "err", err)
		}
	}
}

// CastStarted ends effects broken by casting (e.g. invisibility).
func (s *CombatState) CastStarted(auth *Authority) {
	s.reg.RemoveOnCast(auth)
}

// TakeDamage applies resistance and shields, then hits the character.
func (s *CombatState) TakeDamage(auth *Authority, damage int) int {
	return s.reg.TakeDamage(auth, damage)
}

// Heal heals the character. Negative amounts are rejected by the life pool.
func (s *CombatState) Heal(auth *Authority, amount int) {
	if !auth.grants(s.reg) {
		return
	}
	s.char.Heal(amount)
}

func (s *CombatState) definition(t EffectType) (*Definition, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("%w: %s (no catalog)", ErrUnknownEffect, t)
	}
	def, ok := s.catalog.Lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, t)
	}
	return def, nil
}

func (s *CombatState) Registry() *Registry   { return s.reg }
func (s *CombatState) Character() Character  { return s.char }
func (s *CombatState) ObjectID() uint32      { return s.char.ObjectID() }
func (s *CombatState) Has(t EffectType) bool { return s.reg.Has(t) }

func (s *CombatState) Bonuses(auth *Authority) Bonuses { return s.reg.Bonuses(auth) }

func (s *CombatState) IsStunned() bool                { return s.reg.Flags().Stunned }
func (s *CombatState) IsSilenced() bool               { return s.reg.Flags().Silenced }
func (s *CombatState) IsUntargetable() bool           { return s.reg.Flags().Untargetable }
func (s *CombatState) AnimationState() AnimationState { return s.reg.Flags().Animation }
func (s *CombatState) Flags() Flags                   { return s.reg.Flags() }
func (s *CombatState) SpeedBonus() float64            { return s.reg.SpeedBonus() }
func (s *CombatState) RemainingShield() int           { return s.reg.RemainingShield() }
