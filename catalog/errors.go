package catalog

import (
	"fmt"

	"github.com/Laisky/errors/v2"
)

// ErrUpstream marks fetch and decode failures against the upstream
// catalog. Callers map it to a 502-equivalent.
var ErrUpstream = errors.New("upstream catalog error")

// ErrRebuildTimeout is returned to a synchronous rebuild caller whose wait
// exceeded its bound. The underlying fetch keeps running so later callers
// still benefit from its result.
var ErrRebuildTimeout = errors.New("rebuild wait timed out")

// ValidationError reports a malformed query or tool argument. It is
// surfaced to the caller as a 400-equivalent and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
