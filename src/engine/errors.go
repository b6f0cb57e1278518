package engine

import (
	"errors"
	"fmt"
)

// InvariantViolation reports a transition that was expected to affect exactly
// one row but did not. It always aborts the operation it came from and is
// never swallowed.
type InvariantViolation struct {
	Op       string
	ID       string
	Affected int64
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: expected exactly 1 row for reservation %s, got %d", e.Op, e.ID, e.Affected)
}

// ErrEventStarted means no offline payment deadline can be offered because
// the event has already begun.
var ErrEventStarted = errors.New("event already started")

// ErrTransitionLost means a concurrent actor already moved the reservation
// out of the expected status; the caller lost the race and must not retry
// blindly.
var ErrTransitionLost = errors.New("reservation no longer in expected status")

// ErrNoFreeInventory means the requested quantity is not available in the
// category's free pool.
var ErrNoFreeInventory = errors.New("not enough free inventory")
