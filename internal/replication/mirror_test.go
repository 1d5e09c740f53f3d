package replication_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/replication"
	"github.com/udisondev/auracore/internal/testutil"
)

func flush(t *testing.T, c *testutil.Combatant) {
	t.Helper()
	require.NoError(t, c.Channel.Flush())
}

func TestMirror_FollowsAuthority(t *testing.T) {
	c := testutil.NewCombatant(t)
	mirror, mirrorEvents := c.Mirror(t)

	require.True(t, c.Add(status.EffectPoison))
	require.True(t, c.Add(status.EffectShield))
	require.True(t, c.Add(status.EffectStun))
	require.True(t, c.State.AddEffect(c.Auth, status.EffectPoison, testutil.Caster(), status.Override{Stacks: 2}))
	flush(t, c)

	assert.Equal(t, c.State.Registry().Entries(), mirror.Entries())
	assert.Equal(t, status.AnimationStun, mirror.Animation())
	assert.Equal(t, 20, mirror.RemainingShield())

	c.State.TakeDamage(c.Auth, 5)
	c.State.Tick(c.Auth, 2)
	flush(t, c)

	assert.Equal(t, []status.EffectType{status.EffectPoison, status.EffectShield}, mirror.Types(),
		"stun expired, order of the rest preserved")
	assert.Equal(t, status.AnimationNone, mirror.Animation())
	assert.Equal(t, c.State.RemainingShield(), mirror.RemainingShield())
	assert.Equal(t, c.Channel.Seq(), mirror.Seq())

	c.Char.Hit(c.Char.CurrentHP())
	flush(t, c)

	assert.Empty(t, mirror.Types())
	assert.True(t, mirror.InSync())
	assert.Equal(t, c.Events.Events(), mirrorEvents.Events(),
		"observers see exactly the authoritative event stream")
}

func TestMirror_LateJoinSkipsCoveredOps(t *testing.T) {
	c := testutil.NewCombatant(t)
	c.Add(status.EffectSlow)
	c.Add(status.EffectSilence)
	require.Equal(t, 4, c.Channel.Pending(), "two adds, a speed change and an animation change")

	mirror, events := c.Mirror(t)
	assert.Equal(t, []status.EffectType{status.EffectSlow, status.EffectSilence}, mirror.Types())
	assert.Equal(t, status.AnimationSilenced, mirror.Animation())
	assert.InDelta(t, 0.85, mirror.SpeedBonus(), 1e-9)

	flush(t, c)
	assert.Zero(t, events.Len(), "ops already in the snapshot are not replayed")
	assert.Equal(t, c.Channel.Seq(), mirror.Seq())

	_, err := c.State.RemoveEffect(c.Auth, status.EffectSlow)
	require.NoError(t, err)
	flush(t, c)

	assert.Equal(t, []status.EffectType{status.EffectSilence}, mirror.Types())
	assert.Equal(t, []status.EffectType{status.EffectSlow}, events.Types(status.EventRemoved))
	assert.InDelta(t, 1.0, mirror.SpeedBonus(), 1e-9)
}

func TestMirror_SequenceGapNeedsRestore(t *testing.T) {
	c := testutil.NewCombatant(t)
	mirror := replication.NewMirror(replication.MirrorConfig{
		Character:   c.Char.ObjectID(),
		Fingerprint: c.Catalog.Fingerprint(),
	})

	c.Add(status.EffectHaste)
	flush(t, c) // mirror is not subscribed and misses these ops
	snap, unsubscribe, err := c.Channel.Subscribe(mirror)
	require.NoError(t, err)
	defer unsubscribe()

	c.Add(status.EffectStun)
	err = c.Channel.Flush()
	require.ErrorIs(t, err, replication.ErrSequenceGap)
	assert.False(t, mirror.InSync())

	c.Add(status.EffectSilence)
	require.Error(t, c.Channel.Flush(), "a broken mirror rejects frames until restored")

	require.NoError(t, mirror.Restore(snap))
	assert.True(t, mirror.InSync())
	assert.Equal(t, []status.EffectType{status.EffectHaste}, mirror.Types())

	fresh, _, err := c.Channel.Subscribe(replication.SinkFunc(func([]byte) error { return nil }))
	require.NoError(t, err)
	require.NoError(t, mirror.Restore(fresh))
	assert.Equal(t, c.State.Registry().Types(), mirror.Types())
	assert.Equal(t, status.AnimationStun, mirror.Animation())
}

func TestMirror_Divergence(t *testing.T) {
	tests := []struct {
		name string
		ops  []replication.Op
	}{
		{"duplicate add", []replication.Op{
			{Seq: 1, Kind: replication.OpAdd, Type: status.EffectStun, Stacks: 1},
			{Seq: 2, Kind: replication.OpAdd, Type: status.EffectStun, Stacks: 1},
		}},
		{"refresh of missing", []replication.Op{
			{Seq: 1, Kind: replication.OpRefresh, Type: status.EffectStun, Stacks: 1},
		}},
		{"remove wrong type", []replication.Op{
			{Seq: 1, Kind: replication.OpAdd, Type: status.EffectStun, Stacks: 1},
			{Seq: 2, Kind: replication.OpRemove, Index: 0, Type: status.EffectHaste, Stacks: 1},
		}},
		{"remove out of range", []replication.Op{
			{Seq: 1, Kind: replication.OpRemove, Index: 3, Type: status.EffectStun, Stacks: 1},
		}},
		{"clear mismatch", []replication.Op{
			{Seq: 1, Kind: replication.OpAdd, Type: status.EffectStun, Stacks: 1},
			{Seq: 2, Kind: replication.OpClear, Entries: []status.Entry{{Type: status.EffectHaste, Stacks: 1}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := replication.NewMirror(replication.MirrorConfig{Character: 9})
			err := m.Deliver(replication.EncodeFrame(replication.Frame{Character: 9, Ops: tt.ops}))
			require.ErrorIs(t, err, replication.ErrDiverged)
			assert.False(t, m.InSync())
		})
	}
}

func TestMirror_PublishesOpsAppliedBeforeFailure(t *testing.T) {
	bus := status.NewBus()
	events := testutil.Record(bus)
	m := replication.NewMirror(replication.MirrorConfig{Character: 9, Bus: bus})

	err := m.Deliver(replication.EncodeFrame(replication.Frame{Character: 9, Ops: []replication.Op{
		{Seq: 1, Kind: replication.OpAdd, Type: status.EffectStun, Stacks: 1, Duration: 2},
		{Seq: 3, Kind: replication.OpAdd, Type: status.EffectHaste, Stacks: 1, Duration: 4},
	}}))
	require.ErrorIs(t, err, replication.ErrSequenceGap)
	assert.Equal(t, []status.EffectType{status.EffectStun}, events.Types(status.EventAdded))
	assert.Equal(t, uint64(1), m.Seq())
}

func TestMirror_RejectsForeignFrames(t *testing.T) {
	m := replication.NewMirror(replication.MirrorConfig{Character: 9})
	err := m.Deliver(replication.EncodeFrame(replication.Frame{Character: 10, Ops: []replication.Op{
		{Seq: 1, Kind: replication.OpAnimation, Animation: status.AnimationStun},
	}}))
	require.ErrorIs(t, err, replication.ErrDiverged)
	assert.True(t, m.InSync(), "a misrouted frame does not break the mirror")

	require.ErrorIs(t, m.Deliver([]byte{0x01}), replication.ErrMalformedFrame)
}

func TestMirror_Restore(t *testing.T) {
	c := testutil.NewCombatant(t)
	c.Add(status.EffectFrozen)
	snap, _, err := c.Channel.Subscribe(replication.SinkFunc(func([]byte) error { return nil }))
	require.NoError(t, err)

	t.Run("fingerprint mismatch", func(t *testing.T) {
		m := replication.NewMirror(replication.MirrorConfig{Character: c.Char.ObjectID()})
		require.ErrorIs(t, m.Restore(snap), replication.ErrFingerprint)
		assert.Empty(t, m.Types())
	})

	t.Run("other character", func(t *testing.T) {
		m := replication.NewMirror(replication.MirrorConfig{Character: 7, Fingerprint: c.Catalog.Fingerprint()})
		require.ErrorIs(t, m.Restore(snap), replication.ErrDiverged)
	})

	t.Run("garbage", func(t *testing.T) {
		m := replication.NewMirror(replication.MirrorConfig{Character: c.Char.ObjectID()})
		require.Error(t, m.Restore([]byte{0xC1}))
	})

	t.Run("ok", func(t *testing.T) {
		m := replication.NewMirror(replication.MirrorConfig{
			Character:   c.Char.ObjectID(),
			Fingerprint: c.Catalog.Fingerprint(),
		})
		require.NoError(t, m.Restore(snap))
		assert.Equal(t, []status.EffectType{status.EffectFrozen}, m.Types())
		assert.Equal(t, status.AnimationFrozen, m.Animation())
		assert.Zero(t, m.SpeedBonus())
		assert.Equal(t, c.Channel.Seq(), m.Seq())
	})
}

func TestView_DerivesFlagsWithNeutralMath(t *testing.T) {
	c := testutil.NewCombatant(t)
	mirror, _ := c.Mirror(t)
	view := replication.NewView(mirror)

	c.Add(status.EffectMalediction)
	c.Add(status.EffectInvisible)
	c.Add(status.EffectRage)
	flush(t, c)

	assert.True(t, view.IsSilenced())
	assert.True(t, view.IsUntargetable())
	assert.False(t, view.IsStunned())
	assert.Equal(t, c.State.Flags(), view.Flags())

	assert.Equal(t, 10, view.Bonuses().ApplyBonusDamages(10))
	assert.Equal(t, 11, c.State.Bonuses(c.Auth).ApplyBonusDamages(5))
}
