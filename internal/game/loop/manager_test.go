package loop_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/auracore/internal/game/loop"
	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/testutil"
)

func unitOf(c *testutil.Combatant) *loop.Unit {
	return &loop.Unit{State: c.State, Auth: c.Auth, Channel: c.Channel}
}

func addEffect(target uint32, t status.EffectType) loop.Command {
	return loop.Command{
		Target: target,
		Name:   "add " + t.String(),
		Run: func(u *loop.Unit) error {
			u.State.AddEffect(u.Auth, t, testutil.Caster(), status.Override{})
			return nil
		},
	}
}

func TestManager_RegisterUnregister(t *testing.T) {
	m := loop.NewManager(loop.Config{})
	c := testutil.NewCombatant(t)

	require.NoError(t, m.Register(unitOf(c)))
	require.ErrorIs(t, m.Register(unitOf(c)), loop.ErrUnitExists)
	assert.Equal(t, 1, m.Count())

	u, err := m.Unit(c.Char.ObjectID())
	require.NoError(t, err)
	assert.Same(t, c.State, u.State)

	m.Unregister(c.Char.ObjectID())
	assert.Zero(t, m.Count())
	_, err = m.Unit(c.Char.ObjectID())
	require.ErrorIs(t, err, loop.ErrUnitNotFound)

	m.Unregister(c.Char.ObjectID()) // no-op
}

func TestManager_StepRunsCommandsBeforeTicks(t *testing.T) {
	m := loop.NewManager(loop.Config{TickInterval: 50 * time.Millisecond})
	c := testutil.NewCombatant(t)
	require.NoError(t, m.Register(unitOf(c)))

	m.Enqueue(addEffect(c.Char.ObjectID(), status.EffectStun))
	m.Step(50 * time.Millisecond)

	require.True(t, c.State.IsStunned())
	in := c.State.Registry().Instance(status.EffectStun)
	require.NotNil(t, in)
	assert.InDelta(t, 1.95, in.Remaining(), 1e-9, "the command's effect is ticked in the same step")

	for range 39 {
		m.Step(50 * time.Millisecond)
	}
	assert.False(t, c.State.IsStunned(), "a 2s stun ends after 40 steps of 50ms")
	assert.Equal(t, uint64(40), m.Steps())
}

func TestManager_StepTicksInAscendingIDOrder(t *testing.T) {
	m := loop.NewManager(loop.Config{})

	var order []uint32
	for _, id := range []uint32{30, 10, 20} {
		c := testutil.NewCombatantWith(t, id, 50, nil)
		c.Bus.Subscribe(func(e status.Event) {
			if e.Kind == status.EventRemoved {
				order = append(order, e.Character)
			}
		})
		require.NoError(t, m.Register(unitOf(c)))
		c.Add(status.EffectStun)
	}

	m.Step(3 * time.Second)
	assert.Equal(t, []uint32{10, 20, 30}, order)
}

func TestManager_CommandFailures(t *testing.T) {
	m := loop.NewManager(loop.Config{})
	c := testutil.NewCombatant(t)
	require.NoError(t, m.Register(unitOf(c)))

	ran := false
	m.Enqueue(loop.Command{Target: 999, Name: "ghost", Run: func(*loop.Unit) error {
		ran = true
		return nil
	}})
	m.Enqueue(loop.Command{Target: c.Char.ObjectID(), Name: "broken", Run: func(*loop.Unit) error {
		return testutil.ErrSimulated
	}})
	m.Enqueue(addEffect(c.Char.ObjectID(), status.EffectHaste))

	m.Step(10 * time.Millisecond)
	assert.False(t, ran, "commands for unknown units are dropped")
	assert.True(t, c.State.Has(status.EffectHaste), "a failing command does not stop the queue")
}

func TestManager_FlushInterval(t *testing.T) {
	m := loop.NewManager(loop.Config{TickInterval: 50 * time.Millisecond, FlushInterval: 150 * time.Millisecond})
	c := testutil.NewCombatant(t)
	require.NoError(t, m.Register(unitOf(c)))
	mirror, _ := c.Mirror(t)

	m.Enqueue(addEffect(c.Char.ObjectID(), status.EffectSilence))
	m.Step(50 * time.Millisecond)
	m.Step(50 * time.Millisecond)
	assert.False(t, mirror.Has(status.EffectSilence), "not flushed yet")
	assert.NotZero(t, c.Channel.Pending())

	m.Step(50 * time.Millisecond)
	assert.True(t, mirror.Has(status.EffectSilence))
	assert.Zero(t, c.Channel.Pending())
}

func TestManager_Start(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := loop.NewManager(loop.Config{TickInterval: 50 * time.Millisecond})
		c := testutil.NewCombatant(t)
		require.NoError(t, m.Register(unitOf(c)))
		mirror, _ := c.Mirror(t)

		ctx, cancel := testutil.ContextWithCancel(t)
		done := make(chan error, 1)
		go func() { done <- m.Start(ctx) }()

		m.Enqueue(addEffect(c.Char.ObjectID(), status.EffectStun))

		time.Sleep(1025 * time.Millisecond)
		synctest.Wait()
		assert.True(t, c.State.IsStunned())
		assert.True(t, mirror.Has(status.EffectStun))

		time.Sleep(time.Second)
		synctest.Wait()
		assert.False(t, c.State.IsStunned())
		assert.False(t, mirror.Has(status.EffectStun))

		cancel()
		err := <-done
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestManager_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := loop.NewManager(loop.Config{TickInterval: 50 * time.Millisecond})

		done := make(chan error, 1)
		go func() { done <- m.Start(context.Background()) }()

		time.Sleep(200 * time.Millisecond)
		m.Stop()
		m.Stop()
		require.NoError(t, <-done)
		assert.GreaterOrEqual(t, m.Steps(), uint64(3))
	})
}

func TestRunSchedule(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := loop.NewManager(loop.Config{})
		c := testutil.NewCombatant(t)
		require.NoError(t, m.Register(unitOf(c)))
		id := c.Char.ObjectID()

		cmds := []loop.Scheduled{
			{At: time.Second, Command: addEffect(id, status.EffectHaste)},
			{At: 0, Command: addEffect(id, status.EffectArmor)},
		}

		done := make(chan error, 1)
		go func() { done <- loop.RunSchedule(context.Background(), m, cmds) }()

		synctest.Wait()
		m.Step(time.Millisecond)
		assert.True(t, c.State.Has(status.EffectArmor))
		assert.False(t, c.State.Has(status.EffectHaste))

		time.Sleep(time.Second)
		require.NoError(t, <-done)
		m.Step(time.Millisecond)
		assert.True(t, c.State.Has(status.EffectHaste))
	})
}

func TestRunSchedule_Canceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := loop.NewManager(loop.Config{})
		ctx, cancel := testutil.ContextWithCancel(t)

		done := make(chan error, 1)
		go func() {
			done <- loop.RunSchedule(ctx, m, []loop.Scheduled{{At: time.Hour, Command: addEffect(1, status.EffectStun)}})
		}()

		synctest.Wait()
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
	})
}
