package replication

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/udisondev/auracore/internal/game/status"
)

// Sink receives encoded frames. A Mirror is a Sink.
type Sink interface {
	Deliver(frame []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(frame []byte) error

func (f SinkFunc) Deliver(frame []byte) error { return f(frame) }

// ChannelConfig identifies the replicated character and the catalog both
// sides play with.
type ChannelConfig struct {
	Character   uint32
	Fingerprint [32]byte
}

// Channel is the authoritative end of one character's replication feed.
// It implements status.Replicator: the registry reports every change, the
// channel numbers it and batches it until Flush.
//
// Replicator calls come from the simulation goroutine; Subscribe and
// Snapshot may be called from any goroutine.
type Channel struct {
	character   uint32
	fingerprint [32]byte

	mu      sync.Mutex
	seq     uint64
	entries []status.Entry
	anim    status.AnimationState
	speed   float64
	shield  int
	pending []Op

	sinks  map[uint64]Sink
	nextID uint64
}

var _ status.Replicator = (*Channel)(nil)

func NewChannel(cfg ChannelConfig) *Channel {
	return &Channel{
		character:   cfg.Character,
		fingerprint: cfg.Fingerprint,
		speed:       1,
		sinks:       make(map[uint64]Sink),
	}
}

func (c *Channel) Append(t status.EffectType, stacks int, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, status.Entry{Type: t, Stacks: stacks})
	c.push(Op{Kind: OpAdd, Type: t, Stacks: stacks, Duration: duration})
}

func (c *Channel) Refresh(t status.EffectType, stacks int, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(t); i >= 0 {
		c.entries[i].Stacks = stacks
	}
	c.push(Op{Kind: OpRefresh, Type: t, Stacks: stacks, Duration: duration})
}

func (c *Channel) RemoveAt(index int, t status.EffectType, stacks int, reason status.RemoveReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.entries) || c.entries[index].Type != t {
		// The registry and its channel always move together; a mismatch
		// means the channel was attached to the wrong registry.
		slog.Error("replication channel out of sync",
			"character", c.character,
			"index", index,
			"effect", t)
		return
	}
	c.entries = slices.Delete(c.entries, index, index+1)
	c.push(Op{Kind: OpRemove, Index: index, Type: t, Stacks: stacks, Reason: reason})
}

func (c *Channel) Clear(removed []status.Entry, reason status.RemoveReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
	c.push(Op{Kind: OpClear, Entries: slices.Clone(removed), Reason: reason})
}

func (c *Channel) SetAnimation(a status.AnimationState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anim = a
	c.push(Op{Kind: OpAnimation, Animation: a})
}

func (c *Channel) SetScalars(speed float64, shield int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed, c.shield = speed, shield
	c.push(Op{Kind: OpScalars, Speed: speed, Shield: shield})
}

func (c *Channel) push(op Op) {
	c.seq++
	op.Seq = c.seq
	c.pending = append(c.pending, op)
}

func (c *Channel) indexOf(t status.EffectType) int {
	return slices.IndexFunc(c.entries, func(e status.Entry) bool { return e.Type == t })
}

// Subscribe attaches sink and returns a snapshot of the current state.
// The sink receives every frame flushed after Subscribe returns; operations
// already covered by the snapshot are skipped by the mirror.
func (c *Channel) Subscribe(sink Sink) (snapshot []byte, unsubscribe func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot, err = c.snapshotLocked().Marshal()
	if err != nil {
		return nil, nil, err
	}
	c.nextID++
	id := c.nextID
	c.sinks[id] = sink

	return snapshot, func() {
		c.mu.Lock()
		delete(c.sinks, id)
		c.mu.Unlock()
	}, nil
}

// Snapshot returns the full replicated state at the current sequence.
func (c *Channel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Channel) snapshotLocked() Snapshot {
	return newSnapshot(c.character, c.seq, c.fingerprint, c.entries, c.anim, c.speed, c.shield)
}

// Pending returns the number of operations waiting for Flush.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Seq returns the sequence number of the last recorded operation.
func (c *Channel) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Entries returns the channel's copy of the replicated sequence.
func (c *Channel) Entries() []status.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.entries)
}

// maxOpsPerFrame is bounded by the uint16 op count of the frame header.
const maxOpsPerFrame = math.MaxUint16

// Flush encodes pending operations into frames and delivers them to every
// sink in subscription order. Sink errors are joined and returned; a failing
// sink stays subscribed so it can Restore and catch up.
func (c *Channel) Flush() error {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	var frames [][]byte
	for chunk := range slices.Chunk(c.pending, maxOpsPerFrame) {
		frames = append(frames, EncodeFrame(Frame{Character: c.character, Ops: chunk}))
	}
	clear(c.pending)
	c.pending = c.pending[:0]

	ids := make([]uint64, 0, len(c.sinks))
	for id := range c.sinks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	sinks := make([]Sink, len(ids))
	for i, id := range ids {
		sinks[i] = c.sinks[id]
	}
	c.mu.Unlock()

	var errs []error
	for i, s := range sinks {
		for _, frame := range frames {
			if err := s.Deliver(frame); err != nil {
				errs = append(errs, fmt.Errorf("sink %d: %w", ids[i], err))
				break
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("flush character %d: %w", c.character, errors.Join(errs...))
	}
	return nil
}
