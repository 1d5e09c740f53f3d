package data

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/replication/packet"
)

// ErrInvalidDefinition: определение эффекта не прошло валидацию или дублируется.
var ErrInvalidDefinition = errors.New("invalid effect definition")

// Catalog: неизменяемый набор определений эффектов, по одному на тип.
// Безопасен для конкурентного чтения: после NewCatalog не меняется.
type Catalog struct {
	defs        map[status.EffectType]*status.Definition
	order       []status.EffectType
	fingerprint [blake2b.Size256]byte
}

// NewCatalog валидирует определения и строит каталог.
// Дубликат типа или невалидное определение возвращают ErrInvalidDefinition.
func NewCatalog(defs []status.Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[status.EffectType]*status.Definition, len(defs))}

	var errs []error
	for i := range defs {
		def := defs[i]
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.defs[def.Type]; dup {
			errs = append(errs, fmt.Errorf("duplicate definition %s", def.Type))
			continue
		}
		def.Modifiers = slices.Clone(def.Modifiers)
		def.BlockedBy = slices.Clone(def.BlockedBy)
		c.defs[def.Type] = &def
		c.order = append(c.order, def.Type)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, errors.Join(errs...))
	}

	slices.Sort(c.order)
	c.fingerprint = c.computeFingerprint()
	return c, nil
}

// BuiltinCatalog строит каталог из Go-литералов (effectDefs).
func BuiltinCatalog() (*Catalog, error) {
	defs := make([]status.Definition, 0, len(effectDefs))
	for i := range effectDefs {
		defs = append(defs, effectDefs[i].definition())
	}
	c, err := NewCatalog(defs)
	if err != nil {
		return nil, fmt.Errorf("building builtin catalog: %w", err)
	}
	slog.Info("loaded effect definitions", "source", "builtin", "count", c.Len())
	return c, nil
}

// Lookup возвращает определение типа t.
func (c *Catalog) Lookup(t status.EffectType) (*status.Definition, bool) {
	def, ok := c.defs[t]
	return def, ok
}

// Definitions возвращает копии всех определений в порядке кодов типов.
func (c *Catalog) Definitions() []status.Definition {
	out := make([]status.Definition, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, *c.defs[t])
	}
	return out
}

// Len возвращает количество определений.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Fingerprint: BLAKE2b-256 от канонической бинарной формы каталога.
// Наблюдатель сравнивает его со снапшотом, чтобы убедиться, что обе стороны
// играют по одним и тем же правилам.
func (c *Catalog) Fingerprint() [32]byte {
	return c.fingerprint
}

func (c *Catalog) computeFingerprint() [32]byte {
	w := packet.NewWriter(256)
	w.WriteInt(int32(len(c.order)))
	for _, t := range c.order {
		encodeDefinition(w, c.defs[t])
	}
	return blake2b.Sum256(w.Bytes())
}

// encodeDefinition пишет определение в порядке полей, модификаторы и
// иммунитеты в порядке объявления: он значим для округления и логов.
func encodeDefinition(w *packet.Writer, d *status.Definition) {
	w.WriteUShort(uint16(d.Type))
	w.WriteByte(byte(d.Stacking))
	w.WriteInt(int32(d.MaxStacks))
	w.WriteDouble(d.Duration)
	w.WriteByte(byte(d.RefreshMode))
	w.WriteDouble(d.MaxDuration)
	w.WriteInt(int32(d.Shield))
	w.WriteByte(byte(d.ShieldPolicy))
	w.WriteDouble(d.TickInterval)
	w.WriteBool(d.DisablesCollision)
	w.WriteBool(d.RemovedOnCast)

	w.WriteInt(int32(len(d.Modifiers)))
	for _, m := range d.Modifiers {
		w.WriteByte(byte(m.Property))
		w.WriteByte(byte(m.Mode))
		w.WriteDouble(m.Value)
	}
	w.WriteInt(int32(len(d.BlockedBy)))
	for _, b := range d.BlockedBy {
		w.WriteUShort(uint16(b))
	}
}
