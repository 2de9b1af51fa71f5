// Package cpu implements the CPU backend: pure Go op implementations over
// strided array views.
package cpu

import (
	"github.com/pkg/errors"

	"github.com/axon-ml/axon/internal/tensor"
)

// DeviceKind is the device kind served by this backend.
const DeviceKind = "cpu"

// Backend implements creation ops on host memory.
type Backend struct {
	device tensor.Device
	ops    map[string]tensor.Op
}

// New creates the CPU backend for ordinal 0.
func New() *Backend {
	return NewWithOrdinal(0)
}

// NewWithOrdinal creates a CPU backend for the given device ordinal. Multiple
// ordinals behave identically; they exist so code paths that schedule across
// device instances can be exercised on hosts without accelerators.
func NewWithOrdinal(ordinal int) *Backend {
	b := &Backend{device: tensor.Device{Kind: DeviceKind, Ordinal: ordinal}}
	// The table is built once and only read afterwards, so lookups are safe
	// for concurrent use without locking.
	b.ops = map[string]tensor.Op{
		tensor.OpArange:   arangeOp{b},
		tensor.OpCopy:     copyOp{b},
		tensor.OpAsType:   asTypeOp{b},
		tensor.OpFill:     fillOp{b},
		tensor.OpIdentity: identityOp{b},
		tensor.OpEye:      eyeOp{b},
		tensor.OpDiagflat: diagflatOp{b},
		tensor.OpLinspace: linspaceOp{b},
	}
	return b
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return DeviceKind
}

// Device returns the device instance this backend serves.
func (b *Backend) Device() tensor.Device {
	return b.device
}

// Op returns the implementation registered under name, if any.
func (b *Backend) Op(name string) (tensor.Op, bool) {
	op, ok := b.ops[name]
	return op, ok
}

// owns verifies that every operand resides on this backend's device.
func (b *Backend) owns(arrays ...*tensor.Array) error {
	for _, a := range arrays {
		if a.Device() != b.device {
			return errors.Wrapf(tensor.ErrDeviceMismatch,
				"array on %s handed to backend for %s", a.Device(), b.device)
		}
	}
	return nil
}
