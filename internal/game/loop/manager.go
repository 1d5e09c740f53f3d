// Package loop drives the fixed-step simulation of every registered
// character: commands first, then effect ticks, then replication flushes.
package loop

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/replication"
)

var (
	ErrUnitExists   = errors.New("unit already registered")
	ErrUnitNotFound = errors.New("unit not found")
)

// Unit is one simulated character together with the authority over it.
// Channel is optional.
type Unit struct {
	State   *status.CombatState
	Auth    *status.Authority
	Channel *replication.Channel
}

func (u *Unit) ObjectID() uint32 { return u.State.ObjectID() }

// Command mutates one unit. It runs on the loop goroutine at the start of
// the next step, so it may use the unit's authority freely.
type Command struct {
	Target uint32
	Name   string
	Run    func(u *Unit) error
}

// Config configures a Manager. FlushInterval 0 flushes after every step.
type Config struct {
	TickInterval  time.Duration
	FlushInterval time.Duration
}

// Manager is the single writer of every registered CombatState.
type Manager struct {
	interval      time.Duration
	flushInterval time.Duration

	mu    sync.Mutex // guards units and queue
	units map[uint32]*Unit
	queue []Command

	sinceFlush time.Duration // loop goroutine only
	steps      atomic.Uint64
	stopCh     chan struct{}
	stopOnce   sync.Once
}

func NewManager(cfg Config) *Manager {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 50 * time.Millisecond
	}
	return &Manager{
		interval:      cfg.TickInterval,
		flushInterval: cfg.FlushInterval,
		units:         make(map[uint32]*Unit),
		stopCh:        make(chan struct{}),
	}
}

// Register adds a unit to the simulation.
func (m *Manager) Register(u *Unit) error {
	id := u.ObjectID()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[id]; ok {
		return fmt.Errorf("%w: %d", ErrUnitExists, id)
	}
	m.units[id] = u

	slog.Debug("unit registered", "objectID", id)
	return nil
}

// Unregister removes a unit. Pending commands for it are dropped when they run.
func (m *Manager) Unregister(objectID uint32) {
	m.mu.Lock()
	_, ok := m.units[objectID]
	delete(m.units, objectID)
	m.mu.Unlock()

	if ok {
		slog.Debug("unit unregistered", "objectID", objectID)
	}
}

// Unit returns the registered unit with objectID.
func (m *Manager) Unit(objectID uint32) (*Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[objectID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnitNotFound, objectID)
	}
	return u, nil
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.units)
}

// Steps returns the number of completed steps.
func (m *Manager) Steps() uint64 {
	return m.steps.Load()
}

// Enqueue schedules cmd for the next step. Safe for concurrent use.
func (m *Manager) Enqueue(cmd Command) {
	m.mu.Lock()
	m.queue = append(m.queue, cmd)
	m.mu.Unlock()
}

// Start runs the fixed-step loop until ctx is canceled or Stop is called.
// Pending replication is flushed before returning.
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("simulation loop started", "interval", m.interval, "units", m.Count())

	for {
		select {
		case <-ctx.Done():
			m.Flush()
			slog.Info("simulation loop stopping", "steps", m.Steps())
			return ctx.Err()

		case <-m.stopCh:
			m.Flush()
			slog.Info("simulation loop stopped", "steps", m.Steps())
			return nil

		case <-ticker.C:
			m.Step(m.interval)
		}
	}
}

// Stop stops the loop. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Step runs one simulation step of dt: queued commands in arrival order,
// then every unit's effects in ascending object id order, then a flush when
// the flush interval elapsed. Must not be called concurrently with Start.
func (m *Manager) Step(dt time.Duration) {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	units := make([]*Unit, 0, len(m.units))
	for _, u := range m.units {
		units = append(units, u)
	}
	m.mu.Unlock()

	for _, cmd := range queue {
		m.run(cmd)
	}

	slices.SortFunc(units, func(a, b *Unit) int {
		return cmp.Compare(a.ObjectID(), b.ObjectID())
	})
	seconds := dt.Seconds()
	for _, u := range units {
		u.State.Tick(u.Auth, seconds)
	}
	m.steps.Add(1)

	m.sinceFlush += dt
	if m.sinceFlush >= m.flushInterval {
		m.Flush()
	}
}

func (m *Manager) run(cmd Command) {
	u, err := m.Unit(cmd.Target)
	if err != nil {
		slog.Error("command dropped", "command", cmd.Name, "err", err)
		return
	}
	if err := cmd.Run(u); err != nil {
		slog.Error("command failed", "command", cmd.Name, "target", cmd.Target, "err", err)
	}
}

// Flush sends pending replication of every unit to its observers.
func (m *Manager) Flush() {
	m.sinceFlush = 0

	m.mu.Lock()
	units := make([]*Unit, 0, len(m.units))
	for _, u := range m.units {
		if u.Channel != nil {
			units = append(units, u)
		}
	}
	m.mu.Unlock()

	for _, u := range units {
		if err := u.Channel.Flush(); err != nil {
			slog.Error("replication flush failed", "objectID", u.ObjectID(), "err", err)
		}
	}
}
