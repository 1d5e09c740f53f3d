package main

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/auracore/internal/config"
	"github.com/udisondev/auracore/internal/game/loop"
	"github.com/udisondev/auracore/internal/game/status"
)

// buildSchedule turns scenario steps into loop commands.
// Effect labels are resolved up front so a typo fails at startup.
func buildSchedule(m *loop.Manager, steps []config.ScenarioStep) ([]loop.Scheduled, error) {
	out := make([]loop.Scheduled, 0, len(steps))
	for i, st := range steps {
		cmd, err := command(m, st)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
		out = append(out, loop.Scheduled{At: st.At, Command: cmd})
	}
	return out, nil
}

func command(m *loop.Manager, st config.ScenarioStep) (loop.Command, error) {
	cmd := loop.Command{Target: st.Target, Name: st.Action}

	switch st.Action {
	case config.ActionAdd:
		t, err := status.ParseEffectType(st.Effect)
		if err != nil {
			return cmd, err
		}
		ov := status.Override{Stacks: st.Stacks, ExtraSpeed: st.ExtraSpeed}
		if st.Duration != nil {
			ov.Duration, ov.HasDuration = *st.Duration, true
		}
		casterID := st.Caster
		cmd.Name = "add " + t.String()
		cmd.Run = func(u *loop.Unit) error {
			if !u.State.AddEffect(u.Auth, t, casterOf(m, casterID), ov) {
				slog.Info("effect not applied", "effect", t, "target", u.ObjectID(), "caster", casterID)
			}
			return nil
		}

	case config.ActionRemove:
		t, err := status.ParseEffectType(st.Effect)
		if err != nil {
			return cmd, err
		}
		cmd.Name = "remove " + t.String()
		cmd.Run = func(u *loop.Unit) error {
			_, err := u.State.RemoveEffect(u.Auth, t)
			return err
		}

	case config.ActionDamage:
		amount, casterID := st.Amount, st.Caster
		cmd.Run = func(u *loop.Unit) error {
			raw := casterOf(m, casterID).Bonuses.ApplyBonusDamages(amount)
			dealt := u.State.TakeDamage(u.Auth, raw)
			slog.Info("damage dealt",
				"target", u.ObjectID(),
				"caster", casterID,
				"raw", raw,
				"dealt", dealt,
				"shield", u.State.RemainingShield(),
				"alive", u.State.Character().IsAlive())
			return nil
		}

	case config.ActionHeal:
		amount := st.Amount
		cmd.Run = func(u *loop.Unit) error {
			u.State.Heal(u.Auth, amount)
			return nil
		}

	case config.ActionJump, config.ActionLand:
		on := st.Action == config.ActionJump
		cmd.Run = func(u *loop.Unit) error {
			if on && !u.State.Flags().CanMove() {
				return fmt.Errorf("cannot jump while %s", u.State.AnimationState())
			}
			u.State.SetJump(u.Auth, on)
			return nil
		}

	case config.ActionCast:
		cmd.Run = func(u *loop.Unit) error {
			if !u.State.Flags().CanCast() {
				return fmt.Errorf("cannot cast while %s", u.State.AnimationState())
			}
			u.State.CastStarted(u.Auth)
			return nil
		}

	default:
		return cmd, fmt.Errorf("unknown action %q", st.Action)
	}
	return cmd, nil
}

// casterOf resolves the caster's bonuses from its own authoritative state.
// Unknown or absent casters contribute neutral bonuses.
func casterOf(m *loop.Manager, id uint32) status.Caster {
	if id == 0 {
		return status.Caster{Bonuses: status.Neutral{}}
	}
	u, err := m.Unit(id)
	if err != nil {
		return status.Caster{ID: id, Bonuses: status.Neutral{}}
	}
	return status.Caster{ID: id, Bonuses: u.State.Bonuses(u.Auth)}
}
