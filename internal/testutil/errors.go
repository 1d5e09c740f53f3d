package testutil

import "errors"

// ErrSimulated is a sentinel error for sinks and stores that fail on purpose.
var ErrSimulated = errors.New("simulated error for testing")
