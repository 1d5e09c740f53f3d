package loop

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"
)

// Scheduled is a command issued At after the schedule starts.
type Scheduled struct {
	At time.Duration
	Command
}

// RunSchedule enqueues each command on m once its offset elapsed.
// Commands with equal offsets keep their order. Returns nil when every
// command was enqueued, ctx.Err() if canceled first.
func RunSchedule(ctx context.Context, m *Manager, cmds []Scheduled) error {
	cmds = slices.Clone(cmds)
	slices.SortStableFunc(cmds, func(a, b Scheduled) int { return cmp.Compare(a.At, b.At) })

	start := time.Now()

	for _, c := range cmds {
		if wait := c.At - time.Since(start); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Enqueue(c.Command)
		slog.Debug("scheduled command issued", "command", c.Name, "target", c.Target, "at", c.At)
	}
	slog.Info("schedule completed", "commands", len(cmds))
	return nil
}
