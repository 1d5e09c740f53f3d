package main

import (
	"log/slog"

	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/replication"
)

// observer is a logging replication client: a mirror that restores itself
// from a fresh snapshot whenever a frame cannot be applied.
type observer struct {
	ch     *replication.Channel
	mirror *replication.Mirror
	view   replication.View
}

func attachObserver(ch *replication.Channel, character uint32, fp [32]byte) (*observer, error) {
	bus := status.NewBus()
	o := &observer{ch: ch}
	o.mirror = replication.NewMirror(replication.MirrorConfig{
		Character:   character,
		Fingerprint: fp,
		Bus:         bus,
	})
	o.view = replication.NewView(o.mirror)
	bus.Subscribe(o.logEvent)

	snap, _, err := ch.Subscribe(o)
	if err != nil {
		return nil, err
	}
	if err := o.mirror.Restore(snap); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *observer) Deliver(frame []byte) error {
	err := o.mirror.Deliver(frame)
	if err == nil {
		return nil
	}
	snap, merr := o.ch.Snapshot().Marshal()
	if merr != nil {
		return merr
	}
	if rerr := o.mirror.Restore(snap); rerr != nil {
		return rerr
	}
	slog.Warn("observer resynced from snapshot", "character", o.mirror.Character(), "seq", o.mirror.Seq(), "cause", err)
	return nil
}

func (o *observer) logEvent(e status.Event) {
	flags := o.view.Flags()
	switch e.Kind {
	case status.EventAdded:
		slog.Info("observed effect",
			"character", e.Character,
			"effect", e.Type,
			"stacks", e.Stacks,
			"duration", e.Duration,
			"speed", o.mirror.SpeedBonus())
	case status.EventRemoved:
		slog.Info("observed effect end",
			"character", e.Character,
			"effect", e.Type,
			"reason", e.Reason)
	case status.EventAnimationChanged:
		slog.Info("observed animation",
			"character", e.Character,
			"animation", e.Animation,
			"can_move", flags.CanMove(),
			"can_cast", flags.CanCast(),
			"untargetable", flags.Untargetable)
	}
}
