package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an operation on an id or tuple that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a write that lost to a concurrent one it should
	// have won, or a delete blocked by dependent records.
	ErrConflict = errors.New("conflict")
	// ErrUpstreamUnavailable reports an unreachable external collaborator
	// with no safe local fallback.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError reports malformed or out-of-range input tied to a field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
