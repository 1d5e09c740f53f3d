package replication

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/auracore/internal/game/status"
)

// MirrorConfig configures an observer-side copy of one character's effects.
// Bus is optional; Fingerprint is compared against restored snapshots.
type MirrorConfig struct {
	Character   uint32
	Fingerprint [32]byte
	Bus         *status.Bus
}

// Mirror is the observer end of a replication feed. It applies frames in
// sequence order and republishes them as status events on its own bus, so
// observer-side UI and animation code consume the same Event type as the
// authority.
//
// A mirror that detects a gap or a divergence stops applying frames until
// Restore brings it back in sync.
type Mirror struct {
	character   uint32
	fingerprint [32]byte
	bus         *status.Bus

	mu      sync.RWMutex
	seq     uint64
	entries []status.Entry
	anim    status.AnimationState
	speed   float64
	shield  int
	broken  error
	events  uint64
}

var (
	_ Sink              = (*Mirror)(nil)
	_ status.Membership = (*Mirror)(nil)
)

func NewMirror(cfg MirrorConfig) *Mirror {
	return &Mirror{
		character:   cfg.Character,
		fingerprint: cfg.Fingerprint,
		bus:         cfg.Bus,
		speed:       1,
	}
}

// Deliver decodes and applies one frame. Operations at or below the current
// sequence were already applied (or covered by a snapshot) and are skipped.
func (m *Mirror) Deliver(frame []byte) error {
	f, err := DecodeFrame(frame)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.broken != nil {
		err := fmt.Errorf("mirror of %d needs restore: %w", m.character, m.broken)
		m.mu.Unlock()
		return err
	}
	if f.Character != m.character {
		m.mu.Unlock()
		return fmt.Errorf("%w: frame for %d delivered to mirror of %d", ErrDiverged, f.Character, m.character)
	}

	var events []status.Event
	for i := range f.Ops {
		op := &f.Ops[i]
		if op.Seq <= m.seq {
			continue
		}
		if op.Seq != m.seq+1 {
			m.broken = fmt.Errorf("%w: expected %d, got %d", ErrSequenceGap, m.seq+1, op.Seq)
			break
		}
		evs, err := m.apply(op)
		if err != nil {
			m.broken = err
			break
		}
		m.seq = op.Seq
		events = append(events, evs...)
	}
	broken := m.broken
	m.mu.Unlock()

	// Events already applied are published even if a later op failed.
	for _, e := range events {
		m.bus.Publish(e)
	}
	if broken != nil {
		slog.Error("replication mirror desynced", "character", m.character, "err", broken)
		return broken
	}
	return nil
}

func (m *Mirror) apply(op *Op) ([]status.Event, error) {
	switch op.Kind {
	case OpAdd:
		if m.indexOf(op.Type) >= 0 {
			return nil, fmt.Errorf("%w: seq %d adds %s twice", ErrDiverged, op.Seq, op.Type)
		}
		m.entries = append(m.entries, status.Entry{Type: op.Type, Stacks: op.Stacks})
		return []status.Event{m.event(status.Event{
			Kind: status.EventAdded, Type: op.Type, Stacks: op.Stacks, Duration: op.Duration,
		})}, nil

	case OpRefresh:
		i := m.indexOf(op.Type)
		if i < 0 {
			return nil, fmt.Errorf("%w: seq %d refreshes missing %s", ErrDiverged, op.Seq, op.Type)
		}
		m.entries[i].Stacks = op.Stacks
		return []status.Event{m.event(status.Event{
			Kind: status.EventAdded, Type: op.Type, Stacks: op.Stacks, Duration: op.Duration,
		})}, nil

	case OpRemove:
		if op.Index < 0 || op.Index >= len(m.entries) || m.entries[op.Index].Type != op.Type {
			return nil, fmt.Errorf("%w: seq %d removes %s at %d", ErrDiverged, op.Seq, op.Type, op.Index)
		}
		m.entries = slices.Delete(m.entries, op.Index, op.Index+1)
		return []status.Event{m.event(status.Event{
			Kind: status.EventRemoved, Type: op.Type, Stacks: op.Stacks, Reason: op.Reason,
		})}, nil

	case OpClear:
		if !slices.EqualFunc(m.entries, op.Entries, func(a, b status.Entry) bool { return a.Type == b.Type }) {
			return nil, fmt.Errorf("%w: seq %d clears %d effects, mirror has %d",
				ErrDiverged, op.Seq, len(op.Entries), len(m.entries))
		}
		events := make([]status.Event, 0, len(op.Entries))
		for _, e := range op.Entries {
			events = append(events, m.event(status.Event{
				Kind: status.EventRemoved, Type: e.Type, Stacks: e.Stacks, Reason: op.Reason,
			}))
		}
		m.entries = m.entries[:0]
		return events, nil

	case OpAnimation:
		m.anim = op.Animation
		return []status.Event{m.event(status.Event{
			Kind: status.EventAnimationChanged, Animation: op.Animation,
		})}, nil

	case OpScalars:
		m.speed, m.shield = op.Speed, op.Shield
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unknown op %s", ErrMalformedFrame, op.Kind)
}

func (m *Mirror) event(e status.Event) status.Event {
	m.events++
	e.Seq = m.events
	e.Character = m.character
	return e
}

// Restore replaces the mirror's state with snapshot and clears any desync.
// No events are published: observers read the restored state directly.
func (m *Mirror) Restore(snapshot []byte) error {
	s, err := UnmarshalSnapshot(snapshot)
	if err != nil {
		return err
	}
	if s.Character != m.character {
		return fmt.Errorf("%w: snapshot of %d restored into mirror of %d", ErrDiverged, s.Character, m.character)
	}
	if !bytes.Equal(s.Fingerprint, m.fingerprint[:]) {
		return fmt.Errorf("%w: character %d", ErrFingerprint, m.character)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq = s.Seq
	m.entries = s.entries()
	m.anim = status.AnimationState(s.Animation)
	m.speed = s.Speed
	m.shield = s.Shield
	m.broken = nil

	slog.Debug("replication mirror restored", "character", m.character, "seq", s.Seq, "effects", len(m.entries))
	return nil
}

func (m *Mirror) indexOf(t status.EffectType) int {
	return slices.IndexFunc(m.entries, func(e status.Entry) bool { return e.Type == t })
}

// Has reports whether t is in the replicated sequence.
func (m *Mirror) Has(t status.EffectType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(t) >= 0
}

// Types returns the replicated types in authoritative order.
func (m *Mirror) Types() []status.EffectType {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]status.EffectType, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Type
	}
	return out
}

func (m *Mirror) Entries() []status.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.entries)
}

func (m *Mirror) Character() uint32 { return m.character }

func (m *Mirror) Seq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// Animation returns the replicated animation state.
func (m *Mirror) Animation() status.AnimationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.anim
}

func (m *Mirror) SpeedBonus() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.speed
}

func (m *Mirror) RemainingShield() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shield
}

// InSync reports whether the mirror is applying frames.
func (m *Mirror) InSync() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.broken == nil
}
