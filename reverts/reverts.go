// Package reverts defines require-style failures: an operation that
// reverts applies no state change, and the message is the
// human-readable reason surfaced to the caller.
package reverts

import "errors"

// ErrRequire is a failed precondition.
type ErrRequire struct {
	message string
}

// Require creates a revert with the given reason.
func Require(message string) *ErrRequire {
	return &ErrRequire{message: message}
}

func (e *ErrRequire) Error() string {
	return e.message
}

// IsRevert reports whether err is a require-style failure, as opposed
// to an internal storage error.
func IsRevert(err error) bool {
	var r *ErrRequire
	return errors.As(err, &r)
}
