package packet

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestWriter_WriteByte(t *testing.T) {
	w := NewWriter(16)

	if err := w.WriteByte(0x42); err != nil {
		t.Fatalf("WriteByte failed: %v", err)
	}

	data := w.Bytes()
	if len(data) != 1 || data[0] != 0x42 {
		t.Fatalf("expected [0x42], got %v", data)
	}
}

func TestWriter_WriteUShort(t *testing.T) {
	w := NewWriter(16)

	w.WriteUShort(0xFFFE)

	data := w.Bytes()
	if len(data) != 2 {
		t.Fatalf("expected length 2, got %d", len(data))
	}
	if got := binary.LittleEndian.Uint16(data); got != 0xFFFE {
		t.Errorf("expected 0xFFFE, got 0x%04X", got)
	}
}

func TestWriter_WriteInt(t *testing.T) {
	w := NewWriter(16)

	w.WriteInt(-2)

	data := w.Bytes()
	if len(data) != 4 {
		t.Fatalf("expected length 4, got %d", len(data))
	}
	if got := int32(binary.LittleEndian.Uint32(data)); got != -2 {
		t.Errorf("expected -2, got %d", got)
	}
}

func TestWriter_WriteLong(t *testing.T) {
	w := NewWriter(16)

	w.WriteLong(0x123456789ABCDEF0)

	if got := binary.LittleEndian.Uint64(w.Bytes()); got != 0x123456789ABCDEF0 {
		t.Errorf("expected 0x123456789ABCDEF0, got 0x%016X", got)
	}
}

func TestWriter_WriteDouble(t *testing.T) {
	w := NewWriter(16)

	w.WriteDouble(-1)

	bits := binary.LittleEndian.Uint64(w.Bytes())
	if got := math.Float64frombits(bits); got != -1 {
		t.Errorf("expected -1, got %v", got)
	}
}

func TestWriter_PoolReset(t *testing.T) {
	w := Get()
	w.WriteInt(7)
	w.Put()

	w = Get()
	defer w.Put()
	if w.Len() != 0 {
		t.Errorf("pooled writer not reset: len=%d", w.Len())
	}
}

func TestWriter_CopyBytesIsIndependent(t *testing.T) {
	w := NewWriter(16)
	w.WriteBool(true)

	cp := w.CopyBytes()
	w.Reset()
	w.WriteBool(false)

	if cp[0] != 1 {
		t.Errorf("copy changed after Reset: %v", cp)
	}
}
