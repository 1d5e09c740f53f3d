package replication

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/udisondev/auracore/internal/game/status"
)

// Snapshot is the full replicated state of one character at Seq.
// Late-joining or diverged observers restore from it.
type Snapshot struct {
	Character   uint32          `msgpack:"character"`
	Seq         uint64          `msgpack:"seq"`
	Fingerprint []byte          `msgpack:"fingerprint"`
	Entries     []SnapshotEntry `msgpack:"entries"`
	Animation   uint8           `msgpack:"animation"`
	Speed       float64         `msgpack:"speed"`
	Shield      int             `msgpack:"shield"`
}

type SnapshotEntry struct {
	Type   uint16 `msgpack:"type"`
	Stacks int    `msgpack:"stacks"`
}

func newSnapshot(
	char uint32,
	seq uint64,
	fp [32]byte,
	entries []status.Entry,
	anim status.AnimationState,
	speed float64,
	shield int,
) Snapshot {
	s := Snapshot{
		Character:   char,
		Seq:         seq,
		Fingerprint: fp[:],
		Entries:     make([]SnapshotEntry, len(entries)),
		Animation:   uint8(anim),
		Speed:       speed,
		Shield:      shield,
	}
	for i, e := range entries {
		s.Entries[i] = SnapshotEntry{Type: uint16(e.Type), Stacks: e.Stacks}
	}
	return s
}

func (s Snapshot) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot of %d: %w", s.Character, err)
	}
	return b, nil
}

// UnmarshalSnapshot decodes a snapshot produced by Snapshot.Marshal.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

func (s Snapshot) entries() []status.Entry {
	out := make([]status.Entry, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = status.Entry{Type: status.EffectType(e.Type), Stacks: e.Stacks}
	}
	return out
}
