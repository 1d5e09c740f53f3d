package testutil

import (
	"testing"

	"github.com/udisondev/auracore/internal/data"
	"github.com/udisondev/auracore/internal/game/status"
	"github.com/udisondev/auracore/internal/model"
	"github.com/udisondev/auracore/internal/replication"
)

// Fixtures содержит общие тестовые значения.
var Fixtures = struct {
	TargetID uint32
	CasterID uint32
	InitialHP int
}{
	TargetID:  1001,
	CasterID:  2002,
	InitialHP: 50,
}

// Catalog возвращает встроенный каталог эффектов.
func Catalog(tb testing.TB) *data.Catalog {
	tb.Helper()
	c, err := data.BuiltinCatalog()
	if err != nil {
		tb.Fatalf("builtin catalog: %v", err)
	}
	return c
}

// Combatant: персонаж с боевым состоянием, шиной, записью событий и
// каналом репликации, собранный так же, как в cmd/combatd.
type Combatant struct {
	Char    *model.Character
	State   *status.CombatState
	Auth    *status.Authority
	Bus     *status.Bus
	Events  *EventRecorder
	Channel *replication.Channel
	Catalog *data.Catalog
}

// NewCombatant создаёт персонажа с Fixtures.InitialHP здоровья без базовых статов.
func NewCombatant(tb testing.TB) *Combatant {
	tb.Helper()
	return NewCombatantWith(tb, Fixtures.TargetID, Fixtures.InitialHP, nil)
}

// NewCombatantWith создаёт персонажа с заданными id, здоровьем и базовыми статами.
func NewCombatantWith(tb testing.TB, id uint32, hp int, base status.BaseStats) *Combatant {
	tb.Helper()

	catalog := Catalog(tb)
	char := model.NewCharacter(id, "dummy", "Warrior", 1, hp)
	bus := status.NewBus()
	ch := replication.NewChannel(replication.ChannelConfig{
		Character:   id,
		Fingerprint: catalog.Fingerprint(),
	})
	state, auth := status.NewCombatState(status.CombatStateConfig{
		Character:  char,
		Base:       base,
		Catalog:    catalog,
		Bus:        bus,
		Replicator: ch,
	})
	return &Combatant{
		Char:    char,
		State:   state,
		Auth:    auth,
		Bus:     bus,
		Events:  Record(bus),
		Channel: ch,
		Catalog: catalog,
	}
}

// Caster возвращает заклинателя без бонусов.
func Caster() status.Caster {
	return status.Caster{ID: Fixtures.CasterID, Bonuses: status.Neutral{}}
}

// Add применяет эффект с одним стаком и длительностью из каталога.
func (c *Combatant) Add(t status.EffectType) bool {
	return c.State.AddEffect(c.Auth, t, Caster(), status.Override{})
}

// Mirror подписывает нового наблюдателя на канал и восстанавливает его из снапшота.
func (c *Combatant) Mirror(tb testing.TB) (*replication.Mirror, *EventRecorder) {
	tb.Helper()
	bus := status.NewBus()
	m := replication.NewMirror(replication.MirrorConfig{
		Character:   c.Char.ObjectID(),
		Fingerprint: c.Catalog.Fingerprint(),
		Bus:         bus,
	})
	snap, unsubscribe, err := c.Channel.Subscribe(m)
	if err != nil {
		tb.Fatalf("subscribe mirror: %v", err)
	}
	tb.Cleanup(unsubscribe)
	if err := m.Restore(snap); err != nil {
		tb.Fatalf("restore mirror: %v", err)
	}
	return m, Record(bus)
}
