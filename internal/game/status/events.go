package status

import (
	"fmt"
	"slices"
	"sync"
)

// EventKind classifies events published by a registry.
type EventKind uint8

const (
	EventAdded EventKind = iota + 1
	EventRemoved
	EventAnimationChanged
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "EffectAdded"
	case EventRemoved:
		return "EffectRemoved"
	case EventAnimationChanged:
		return "AnimationStateChanged"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// RemoveReason qualifies why an effect ended.
type RemoveReason uint8

const (
	ReasonNone RemoveReason = iota
	ReasonExplicit
	ReasonExpired
	ReasonShieldBroken
	ReasonCancelled
	ReasonDeath
)

func (r RemoveReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonExplicit:
		return "explicit"
	case ReasonExpired:
		return "expired"
	case ReasonShieldBroken:
		return "shieldBroken"
	case ReasonCancelled:
		return "cancelled"
	case ReasonDeath:
		return "death"
	default:
		return fmt.Sprintf("RemoveReason(%d)", uint8(r))
	}
}

// Event is what collaborators (UI, audio, animation) receive.
// Added events are re-sent on refresh with the updated stacks and duration.
type Event struct {
	Seq       uint64
	Kind      EventKind
	Character uint32
	Type      EffectType
	Stacks    int
	Duration  float64
	Animation AnimationState
	Reason    RemoveReason
}

// Handler consumes events. Handlers run synchronously on the publisher's goroutine
// and must not mutate the registry that published the event.
type Handler func(Event)

// Bus fans events out to subscribers. The zero value is ready to use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	nextID   int
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers e to every subscriber in subscription order.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	hs := make([]Handler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		hs = append(hs, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}
