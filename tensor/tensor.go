// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for array creation in the Axon ML
// framework.
//
// The package re-exports the core types and creation functions:
//   - Array: a shape/strides/dtype/device-tagged view over a shared buffer
//   - Shape, Strides, DataType, Device, Scalar: geometry and element values
//   - Backend and the per-operation contracts device backends implement
//   - the creation API (Empty, Full, Zeros, Ones, Arange, Eye, Linspace, ...)
//
// Example:
//
//	import (
//	    _ "github.com/axon-ml/axon/backend/cpu"
//	    "github.com/axon-ml/axon/tensor"
//	)
//
//	x, err := tensor.Zeros(tensor.Shape{2, 3})
//	y, err := tensor.Linspace(0, 1, tensor.WithNum(5))
package tensor

import (
	"github.com/axon-ml/axon/internal/tensor"
)

// Core type aliases.

// DType is a constraint for Go types that map directly onto an array dtype.
type DType = tensor.DType

// Numeric is the DType subset usable as range and step parameters.
type Numeric = tensor.Numeric

// DataType represents the element encoding of an array.
type DataType = tensor.DataType

// Data type constants.
const (
	Float16 DataType = tensor.Float16
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool

	// DefaultDType is used by creation functions when no dtype is given.
	DefaultDType DataType = tensor.DefaultDType
)

// Shape represents the dimensions of an array.
type Shape = tensor.Shape

// Strides holds per-dimension byte deltas, one per shape dimension.
type Strides = tensor.Strides

// Device identifies a compute backend instance by kind and ordinal.
type Device = tensor.Device

// Scalar is a dtype-tagged element value.
type Scalar = tensor.Scalar

// Array is the central value: a view over a shared byte buffer.
type Array = tensor.Array

// Backend is the contract compute device backends implement.
type Backend = tensor.Backend

// Op is the common contract of per-device operation implementations.
type Op = tensor.Op

// Per-operation contracts.
type (
	ArangeOp   = tensor.ArangeOp
	CopyOp     = tensor.CopyOp
	AsTypeOp   = tensor.AsTypeOp
	FillOp     = tensor.FillOp
	IdentityOp = tensor.IdentityOp
	EyeOp      = tensor.EyeOp
	DiagflatOp = tensor.DiagflatOp
	LinspaceOp = tensor.LinspaceOp
)

// Op names used as dispatch keys.
const (
	OpArange   = tensor.OpArange
	OpCopy     = tensor.OpCopy
	OpAsType   = tensor.OpAsType
	OpFill     = tensor.OpFill
	OpIdentity = tensor.OpIdentity
	OpEye      = tensor.OpEye
	OpDiagflat = tensor.OpDiagflat
	OpLinspace = tensor.OpLinspace
)

// Error kinds; discriminate with errors.Is.
var (
	ErrInvalidArgument       = tensor.ErrInvalidArgument
	ErrInvalidBufferSize     = tensor.ErrInvalidBufferSize
	ErrOperationNotSupported = tensor.ErrOperationNotSupported
	ErrDeviceMismatch        = tensor.ErrDeviceMismatch
)

// Option configures a creation call.
type Option = tensor.Option

// Recognized options.
var (
	WithDType    = tensor.WithDType
	WithDevice   = tensor.WithDevice
	WithColumns  = tensor.WithColumns
	WithDiagonal = tensor.WithDiagonal
	WithNum      = tensor.WithNum
	WithEndpoint = tensor.WithEndpoint
)

// Geometry helpers.

// RequiredBytes returns the minimum buffer size addressable by every valid
// multi-index under the given shape and strides.
func RequiredBytes(shape Shape, strides Strides, itemSize int) int {
	return tensor.RequiredBytes(shape, strides, itemSize)
}

// IsContiguous reports whether strides describe the canonical row-major
// layout for the shape and item size.
func IsContiguous(shape Shape, strides Strides, itemSize int) bool {
	return tensor.IsContiguous(shape, strides, itemSize)
}

// NewScalar creates a Scalar from a Go value, inferring its dtype.
func NewScalar[T interface {
	~float32 | ~float64 | ~int | ~int32 | ~int64 | ~uint8 | ~bool
}](v T) Scalar {
	return tensor.NewScalar(v)
}

// ParseDevice parses "kind" or "kind:ordinal".
func ParseDevice(s string) (Device, error) { return tensor.ParseDevice(s) }

// Registry and default-device surface.

// RegisterBackend makes a backend's device addressable by the creation API.
func RegisterBackend(b Backend) error { return tensor.RegisterBackend(b) }

// BackendFor returns the backend serving the device.
func BackendFor(d Device) (Backend, error) { return tensor.BackendFor(d) }

// Devices returns every registered device.
func Devices() []Device { return tensor.Devices() }

// DefaultDevice resolves the process's current default device.
func DefaultDevice() (Device, error) { return tensor.DefaultDevice() }

// SetDefaultDevice makes d the process default device.
func SetDefaultDevice(d Device) error { return tensor.SetDefaultDevice(d) }

// UseDevice makes d the default device and returns a restore function that
// MUST be called to reinstate the previous default (use defer).
func UseDevice(d Device) (func(), error) { return tensor.UseDevice(d) }
