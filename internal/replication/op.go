package replication

import (
	"fmt"

	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/replication/packet"
)

// OpKind is the wire code of a replication operation.
type OpKind uint8

const (
	OpAdd OpKind = iota + 1
	OpRefresh
	OpRemove
	OpClear
	OpAnimation
	OpScalars
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "Add"
	case OpRefresh:
		return "Refresh"
	case OpRemove:
		return "Remove"
	case OpClear:
		return "Clear"
	case OpAnimation:
		return "Animation"
	case OpScalars:
		return "Scalars"
	default:
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
}

// frameDelta opens every delta frame.
const frameDelta byte = 0x01

// Op is one change to the replicated sequence or scalars.
// Only the fields meaningful for Kind are encoded.
type Op struct {
	Seq  uint64
	Kind OpKind

	Index    int // OpRemove
	Type     status.EffectType
	Stacks   int
	Duration float64
	Reason   status.RemoveReason // OpRemove, OpClear

	Entries   []status.Entry // OpClear: entries removed, in order
	Animation status.AnimationState
	Speed     float64
	Shield    int
}

// Frame is a batch of consecutive operations for one character.
type Frame struct {
	Character uint32
	Ops       []Op
}

// EncodeFrame serializes f. The returned slice is owned by the caller.
func EncodeFrame(f Frame) []byte {
	w := packet.Get()
	defer w.Put()

	_ = w.WriteByte(frameDelta)
	w.WriteInt(int32(f.Character))
	w.WriteUShort(uint16(len(f.Ops)))
	for i := range f.Ops {
		encodeOp(w, &f.Ops[i])
	}
	return w.CopyBytes()
}

func encodeOp(w *packet.Writer, op *Op) {
	_ = w.WriteByte(byte(op.Kind))
	w.WriteLong(int64(op.Seq))
	switch op.Kind {
	case OpAdd, OpRefresh:
		w.WriteUShort(uint16(op.Type))
		w.WriteInt(int32(op.Stacks))
		w.WriteDouble(op.Duration)
	case OpRemove:
		w.WriteInt(int32(op.Index))
		w.WriteUShort(uint16(op.Type))
		w.WriteInt(int32(op.Stacks))
		_ = w.WriteByte(byte(op.Reason))
	case OpClear:
		_ = w.WriteByte(byte(op.Reason))
		w.WriteUShort(uint16(len(op.Entries)))
		for _, e := range op.Entries {
			w.WriteUShort(uint16(e.Type))
			w.WriteInt(int32(e.Stacks))
		}
	case OpAnimation:
		_ = w.WriteByte(byte(op.Animation))
	case OpScalars:
		w.WriteDouble(op.Speed)
		w.WriteInt(int32(op.Shield))
	}
}

// DecodeFrame parses a frame produced by EncodeFrame.
func DecodeFrame(data []byte) (Frame, error) {
	r := packet.NewReader(data)

	opcode, err := r.ReadByte()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	if opcode != frameDelta {
		return Frame{}, fmt.Errorf("%w: unexpected opcode 0x%02X", ErrMalformedFrame, opcode)
	}
	char, err := r.ReadInt()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: reading character: %w", ErrMalformedFrame, err)
	}
	count, err := r.ReadUShort()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: reading op count: %w", ErrMalformedFrame, err)
	}

	f := Frame{Character: uint32(char), Ops: make([]Op, 0, count)}
	for i := range int(count) {
		op, err := decodeOp(r)
		if err != nil {
			return Frame{}, fmt.Errorf("%w: op %d: %w", ErrMalformedFrame, i, err)
		}
		f.Ops = append(f.Ops, op)
	}
	if r.Remaining() != 0 {
		return Frame{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedFrame, r.Remaining())
	}
	return f, nil
}

// opReader accumulates the first read error so decodeOp stays linear.
type opReader struct {
	r   *packet.Reader
	err error
}

func (o *opReader) u8() byte {
	if o.err != nil {
		return 0
	}
	var v byte
	v, o.err = o.r.ReadByte()
	return v
}

func (o *opReader) u16() uint16 {
	if o.err != nil {
		return 0
	}
	var v uint16
	v, o.err = o.r.ReadUShort()
	return v
}

func (o *opReader) i32() int {
	if o.err != nil {
		return 0
	}
	var v int32
	v, o.err = o.r.ReadInt()
	return int(v)
}

func (o *opReader) i64() int64 {
	if o.err != nil {
		return 0
	}
	var v int64
	v, o.err = o.r.ReadLong()
	return v
}

func (o *opReader) f64() float64 {
	if o.err != nil {
		return 0
	}
	var v float64
	v, o.err = o.r.ReadDouble()
	return v
}

func decodeOp(r *packet.Reader) (Op, error) {
	o := &opReader{r: r}
	op := Op{Kind: OpKind(o.u8())}
	op.Seq = uint64(o.i64())

	switch op.Kind {
	case OpAdd, OpRefresh:
		op.Type = status.EffectType(o.u16())
		op.Stacks = o.i32()
		op.Duration = o.f64()
	case OpRemove:
		op.Index = o.i32()
		op.Type = status.EffectType(o.u16())
		op.Stacks = o.i32()
		op.Reason = status.RemoveReason(o.u8())
	case OpClear:
		op.Reason = status.RemoveReason(o.u8())
		n := int(o.u16())
		if o.err == nil && n*6 > r.Remaining() {
			return Op{}, fmt.Errorf("clear of %d entries exceeds frame", n)
		}
		op.Entries = make([]status.Entry, 0, n)
		for range n {
			op.Entries = append(op.Entries, status.Entry{
				Type:   status.EffectType(o.u16()),
				Stacks: o.i32(),
			})
		}
	case OpAnimation:
		op.Animation = status.AnimationState(o.u8())
	case OpScalars:
		op.Speed = o.f64()
		op.Shield = o.i32()
	default:
		if o.err == nil {
			return Op{}, fmt.Errorf("unknown op kind %d", uint8(op.Kind))
		}
	}
	if o.err != nil {
		return Op{}, o.err
	}
	return op, nil
}
