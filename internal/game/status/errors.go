package status

import "errors"

var (
	// ErrEffectNotFound is returned by Remove when the type is not active.
	// Callers are expected to check Has first, so this signals a logic bug.
	ErrEffectNotFound = errors.New("status: effect not active")

	// ErrUnknownEffect is returned when no definition exists for a type.
	ErrUnknownEffect = errors.New("status: unknown effect type")

	// ErrTargetDead aborts initialization on a dead target.
	ErrTargetDead = errors.New("status: target is dead")

	// ErrImmune aborts initialization when an active effect blocks the new one.
	ErrImmune = errors.New("status: target is immune")
)
