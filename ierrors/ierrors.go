// The iamf-tools ierrors package provides the three error kinds the core
// uses to report failures: invalid arguments, failed preconditions, and
// unimplemented (read-direction) operations.
package ierrors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is against these to classify a failure.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrUnimplemented      = errors.New("unimplemented")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
// Use for caller-supplied data that violates a documented invariant.
func InvalidArgument(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrInvalidArgument)
}

// FailedPrecondition wraps ErrFailedPrecondition with a formatted message.
// Use when internal state makes the requested operation impossible.
func FailedPrecondition(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrFailedPrecondition)
}

// Unimplemented wraps ErrUnimplemented with a formatted message.
// Use for read-direction operations the core does not implement.
func Unimplemented(format string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, a...), ErrUnimplemented)
}

// IsInvalidArgument reports whether err is (or wraps) ErrInvalidArgument.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsFailedPrecondition reports whether err is (or wraps) ErrFailedPrecondition.
func IsFailedPrecondition(err error) bool { return errors.Is(err, ErrFailedPrecondition) }

// IsUnimplemented reports whether err is (or wraps) ErrUnimplemented.
func IsUnimplemented(err error) bool { return errors.Is(err, ErrUnimplemented) }
