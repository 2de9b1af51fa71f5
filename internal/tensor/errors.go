package tensor

import "github.com/pkg/errors"

// Error kinds reported by the creation core. All are programmer-error-class
// failures detected synchronously at the offending call; none are retried.
// Callers discriminate with errors.Is.
var (
	// ErrInvalidArgument reports a malformed shape, axis, size, or operand
	// combination (negative extent, zero Arange step, dtype mismatch, ...).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidBufferSize reports a caller-supplied host buffer smaller than
	// the span RequiredBytes demands for the requested view.
	ErrInvalidBufferSize = errors.New("invalid buffer size")

	// ErrOperationNotSupported reports that the target device's backend
	// registers no implementation for the requested operation name.
	ErrOperationNotSupported = errors.New("operation not supported")

	// ErrDeviceMismatch reports operands of a multi-array operation residing
	// on different devices.
	ErrDeviceMismatch = errors.New("device mismatch")
)
