package testutil

import (
	"sync"

	"github.com/udisondev/auracore/internal/game/status"
)

// EventRecorder collects events published on a status.Bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []status.Event
}

// Record subscribes a new recorder to bus.
func Record(bus *status.Bus) *EventRecorder {
	r := &EventRecorder{}
	bus.Subscribe(r.Handle)
	return r
}

func (r *EventRecorder) Handle(e status.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *EventRecorder) Events() []status.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]status.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events of kind k in publish order.
func (r *EventRecorder) OfKind(k status.EventKind) []status.Event {
	var out []status.Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Types returns the effect types of the recorded events of kind k.
func (r *EventRecorder) Types(k status.EventKind) []status.EffectType {
	var out []status.EffectType
	for _, e := range r.OfKind(k) {
		out = append(out, e.Type)
	}
	return out
}

// Animations returns the animation states announced so far.
func (r *EventRecorder) Animations() []status.AnimationState {
	var out []status.AnimationState
	for _, e := range r.OfKind(status.EventAnimationChanged) {
		out = append(out, e.Animation)
	}
	return out
}

func (r *EventRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
