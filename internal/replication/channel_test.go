package replication_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/replication"
	"github.com/udisondev/auracore/internal/testutil"
)

func TestChannel_FlushWithoutPendingIsNoop(t *testing.T) {
	ch := replication.NewChannel(replication.ChannelConfig{Character: 1})
	delivered := 0
	_, _, err := ch.Subscribe(replication.SinkFunc(func([]byte) error {
		delivered++
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, ch.Flush())
	assert.Zero(t, delivered)
}

func TestChannel_TracksSequence(t *testing.T) {
	ch := replication.NewChannel(replication.ChannelConfig{Character: 1})
	ch.Append(status.EffectStun, 1, 2)
	ch.Append(status.EffectSlow, 1, 3)
	ch.Refresh(status.EffectSlow, 2, 3)
	ch.RemoveAt(0, status.EffectStun, 1, status.ReasonExplicit)

	assert.Equal(t, uint64(4), ch.Seq())
	assert.Equal(t, 4, ch.Pending())
	assert.Equal(t, []status.Entry{{Type: status.EffectSlow, Stacks: 2}}, ch.Entries())

	// An index that does not match the sequence is dropped.
	ch.RemoveAt(0, status.EffectHaste, 1, status.ReasonExplicit)
	assert.Equal(t, uint64(4), ch.Seq())

	snap := ch.Snapshot()
	assert.Equal(t, uint64(4), snap.Seq)
	assert.Equal(t, []replication.SnapshotEntry{{Type: uint16(status.EffectSlow), Stacks: 2}}, snap.Entries)
}

func TestChannel_SinkErrorDoesNotStarveOthers(t *testing.T) {
	c := testutil.NewCombatant(t)

	_, _, err := c.Channel.Subscribe(replication.SinkFunc(func([]byte) error {
		return testutil.ErrSimulated
	}))
	require.NoError(t, err)
	mirror, _ := c.Mirror(t)

	c.Add(status.EffectHaste)
	err = c.Channel.Flush()
	require.ErrorIs(t, err, testutil.ErrSimulated)
	assert.Equal(t, []status.EffectType{status.EffectHaste}, mirror.Types())
	assert.Zero(t, c.Channel.Pending())
}

func TestChannel_Unsubscribe(t *testing.T) {
	ch := replication.NewChannel(replication.ChannelConfig{Character: 1})
	delivered := 0
	_, unsubscribe, err := ch.Subscribe(replication.SinkFunc(func([]byte) error {
		delivered++
		return nil
	}))
	require.NoError(t, err)

	ch.SetAnimation(status.AnimationStun)
	require.NoError(t, ch.Flush())
	unsubscribe()
	ch.SetAnimation(status.AnimationNone)
	require.NoError(t, ch.Flush())

	assert.Equal(t, 1, delivered)
}

func TestChannel_FlushChunksLargeBatches(t *testing.T) {
	const ops = math.MaxUint16 + 10

	ch := replication.NewChannel(replication.ChannelConfig{Character: 3})
	mirror := replication.NewMirror(replication.MirrorConfig{Character: 3})
	var frames int
	_, _, err := ch.Subscribe(replication.SinkFunc(func(frame []byte) error {
		frames++
		return mirror.Deliver(frame)
	}))
	require.NoError(t, err)

	for i := range ops {
		ch.SetScalars(1, i)
	}
	require.NoError(t, ch.Flush())

	assert.Equal(t, 2, frames)
	assert.Equal(t, uint64(ops), mirror.Seq())
	assert.Equal(t, ops-1, mirror.RemainingShield())
}
