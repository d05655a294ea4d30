package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidBar is returned when bar prices or volume are inconsistent.
var ErrInvalidBar = errors.New("invalid bar")

// PreconditionError signals a caller contract violation on the order or
// ledger state machines. These indicate a corruption risk, so they are
// raised as panics instead of being returned: recovering and continuing
// would leave holds and balances out of sync.
type PreconditionError struct {
	Op     string // Operation that detected the violation.
	Detail string
}

func (e *PreconditionError) Error() string {
	return e.Op + ": " + e.Detail
}

// Require panics with a *PreconditionError unless cond holds.
func Require(cond bool, op, format string, args ...any) {
	if !cond {
		panic(&PreconditionError{Op: op, Detail: fmt.Sprintf(format, args...)})
	}
}
