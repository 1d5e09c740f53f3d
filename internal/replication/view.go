package replication

import "github.com/udisondev/auracore/internal/game/status"

// View is the non-authoritative read surface of a character: replicated
// membership and derived flags, neutral combat math.
type View struct {
	*Mirror
}

func NewView(m *Mirror) View {
	return View{Mirror: m}
}

// Flags derives the control flags from the replicated sequence.
func (v View) Flags() status.Flags {
	return status.ComputeFlags(v.Mirror)
}

func (v View) IsStunned() bool      { return status.IsStunned(v.Mirror) }
func (v View) IsSilenced() bool     { return status.IsSilenced(v.Mirror) }
func (v View) IsUntargetable() bool { return status.IsUntargetable(v.Mirror) }

// Bonuses always answers neutral values: combat math is authority-only.
func (v View) Bonuses() status.Bonuses {
	return status.Neutral{}
}
