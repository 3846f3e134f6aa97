package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrOrderNotFound is returned when the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrVersionConflict is returned when a concurrent writer already applied
	// a transition from the same state. The losing caller treats it as a
	// no-op for asynchronous paths.
	ErrVersionConflict = errors.New("order version conflict")
)

// InvalidStateError reports a transition attempted from a status the state
// machine does not allow. It is a business error: synchronous callers surface
// it, asynchronous callers log and drop the stale event.
type InvalidStateError struct {
	OrderID    int64
	Current    Status
	Transition string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %d: cannot %s from status %s", e.OrderID, e.Transition, e.Current)
}

// IsInvalidState reports whether err wraps an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
