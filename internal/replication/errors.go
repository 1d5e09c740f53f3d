package replication

import "errors"

var (
	// ErrSequenceGap is returned when a frame skips operations the observer never saw.
	ErrSequenceGap = errors.New("replication sequence gap")
	// ErrDiverged is returned when an operation does not match the observer's copy.
	ErrDiverged = errors.New("replicated state diverged")
	// ErrFingerprint is returned when a snapshot was produced with another catalog.
	ErrFingerprint = errors.New("catalog fingerprint mismatch")
	// ErrMalformedFrame is returned for frames that cannot be decoded.
	ErrMalformedFrame = errors.New("malformed replication frame")
)
