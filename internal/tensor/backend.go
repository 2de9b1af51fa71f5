package tensor

import "github.com/pkg/errors"

// Op names. Each device backend supplies at most one implementation per name;
// the creation API looks implementations up at call time.
const (
	OpArange   = "Arange"
	OpCopy     = "Copy"
	OpAsType   = "AsType"
	OpFill     = "Fill"
	OpIdentity = "Identity"
	OpEye      = "Eye"
	OpDiagflat = "Diagflat"
	OpLinspace = "Linspace"
)

// Op is the common contract of per-device operation implementations.
type Op interface {
	// OpName returns the fixed name the implementation is registered under.
	OpName() string
}

// Backend is a compute device backend. Beyond identity, the core only ever
// asks it for operation implementations by name; how a backend executes a
// kernel (threading, command queues) is its private concern. Call contracts
// behave as blocking calls that leave destinations fully populated on return.
//
// Op must be safe for concurrent lookup.
type Backend interface {
	// Name returns the backend's short name, e.g. "cpu".
	Name() string

	// Device returns the device instance this backend serves.
	Device() Device

	// Op returns the implementation registered under name, if any.
	Op(name string) (Op, bool)
}

// ArangeOp fills a 1-d destination with start, start+step, start+2*step, ...
// for out.NumElements() elements.
type ArangeOp interface {
	Op
	Call(start, step Scalar, out *Array) error
}

// CopyOp copies element values (not raw bytes, to respect differing strides)
// from a into out. The arrays must match in shape and dtype and both reside
// on the executing device.
type CopyOp interface {
	Op
	Call(a, out *Array) error
}

// AsTypeOp copies element values from a into out, converting to out's dtype.
// The arrays must match in shape and reside on the executing device.
type AsTypeOp interface {
	Op
	Call(a, out *Array) error
}

// FillOp writes value into every element of out.
type FillOp interface {
	Op
	Call(value Scalar, out *Array) error
}

// IdentityOp writes 1 on the main diagonal of out and 0 elsewhere.
// out must be a square 2-d array.
type IdentityOp interface {
	Op
	Call(out *Array) error
}

// EyeOp writes 1 along the k-th diagonal of 2-d out and 0 elsewhere
// (k=0 main, k>0 above, k<0 below).
type EyeOp interface {
	Op
	Call(k int, out *Array) error
}

// DiagflatOp writes the elements of 1-d v along the k-th diagonal of 2-d out
// and 0 elsewhere.
type DiagflatOp interface {
	Op
	Call(v *Array, k int, out *Array) error
}

// LinspaceOp fills 1-d out with evenly spaced values from start to stop
// inclusive. out must have at least one element; with a single element the
// sample equals start. Whether the caller's stop is included is decided by
// the caller, which adjusts stop before dispatching (see Linspace).
type LinspaceOp interface {
	Op
	Call(start, stop float64, out *Array) error
}

// opFor resolves the implementation of the named operation for the device, or
// fails with ErrOperationNotSupported.
func opFor[O Op](device Device, name string) (O, error) {
	var zero O
	b, err := BackendFor(device)
	if err != nil {
		return zero, err
	}
	op, ok := b.Op(name)
	if !ok {
		return zero, errors.Wrapf(ErrOperationNotSupported, "op %q on device %s", name, device)
	}
	impl, ok := op.(O)
	if !ok {
		return zero, errors.Wrapf(ErrOperationNotSupported, "op %q on device %s has wrong contract %T", name, device, op)
	}
	return impl, nil
}
