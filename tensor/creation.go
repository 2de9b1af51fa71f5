// Copyright 2026 Axon ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/axon-ml/axon/internal/tensor"
)

// Construction primitives. These are the low-level entry points the rest of
// the framework builds on; most callers want the creation functions below.

// EmptyStrided allocates an uninitialized buffer on device and returns an
// Array view with the given shape and strides over it.
func EmptyStrided(shape Shape, dtype DataType, strides Strides, device Device) (*Array, error) {
	return tensor.EmptyStrided(shape, dtype, strides, device)
}

// FromHostData wraps externally supplied host memory as an Array and
// materializes it on device. Fails with ErrInvalidBufferSize when data is
// smaller than the view requires.
func FromHostData(shape Shape, dtype DataType, data []byte, strides Strides, offset int, device Device) (*Array, error) {
	return tensor.FromHostData(shape, dtype, data, strides, offset, device)
}

// FromSlice creates a C-contiguous array from a Go slice, inferring the dtype
// from T. Recognized options: WithDevice.
func FromSlice[T DType](data []T, shape Shape, opts ...Option) (*Array, error) {
	return tensor.FromSlice(data, shape, opts...)
}

// EmptyReduced allocates an uninitialized array whose shape is shape with the
// given axes removed, or kept as unit dimensions if keepdims is true.
func EmptyReduced(shape Shape, dtype DataType, axes []int, keepdims bool, device Device) (*Array, error) {
	return tensor.EmptyReduced(shape, dtype, axes, keepdims, device)
}

// AsContiguous returns a unchanged if already C-contiguous in dtype, else a
// fresh C-contiguous copy converted to dtype.
func AsContiguous(a *Array, dtype DataType) (*Array, error) {
	return tensor.AsContiguous(a, dtype)
}

// Creation API.

// Empty creates an uninitialized C-contiguous array.
// Recognized options: WithDType, WithDevice.
func Empty(shape Shape, opts ...Option) (*Array, error) {
	return tensor.Empty(shape, opts...)
}

// Full creates an array filled with value.
// Recognized options: WithDType (default: value's dtype), WithDevice.
func Full(shape Shape, value Scalar, opts ...Option) (*Array, error) {
	return tensor.Full(shape, value, opts...)
}

// Zeros creates an array filled with zeros.
// Recognized options: WithDType, WithDevice.
func Zeros(shape Shape, opts ...Option) (*Array, error) {
	return tensor.Zeros(shape, opts...)
}

// Ones creates an array filled with ones.
// Recognized options: WithDType, WithDevice.
func Ones(shape Shape, opts ...Option) (*Array, error) {
	return tensor.Ones(shape, opts...)
}

// Arange creates a 1-d array with values start, start+step, ... up to but not
// including stop. Recognized options: WithDType (default: inferred from T),
// WithDevice.
func Arange[T Numeric](start, stop, step T, opts ...Option) (*Array, error) {
	return tensor.Arange(start, stop, step, opts...)
}

// ArangeTo is Arange with start 0 and step 1.
func ArangeTo[T Numeric](stop T, opts ...Option) (*Array, error) {
	return tensor.ArangeTo(stop, opts...)
}

// ArangeFrom is Arange with step 1.
func ArangeFrom[T Numeric](start, stop T, opts ...Option) (*Array, error) {
	return tensor.ArangeFrom(start, stop, opts...)
}

// EmptyLike creates an uninitialized array with a's shape and dtype, on the
// default device regardless of a's device. Recognized options: WithDevice.
func EmptyLike(a *Array, opts ...Option) (*Array, error) {
	return tensor.EmptyLike(a, opts...)
}

// FullLike creates an array with a's shape and dtype filled with value.
func FullLike(a *Array, value Scalar, opts ...Option) (*Array, error) {
	return tensor.FullLike(a, value, opts...)
}

// ZerosLike creates a zero-filled array with a's shape and dtype.
func ZerosLike(a *Array, opts ...Option) (*Array, error) {
	return tensor.ZerosLike(a, opts...)
}

// OnesLike creates a one-filled array with a's shape and dtype.
func OnesLike(a *Array, opts ...Option) (*Array, error) {
	return tensor.OnesLike(a, opts...)
}

// Copy creates a fresh C-contiguous copy of a on a's device, connected to
// every differentiation graph active at call time.
func Copy(a *Array) (*Array, error) {
	return tensor.Copy(a)
}

// Identity creates the n-by-n identity matrix.
// Recognized options: WithDType, WithDevice.
func Identity(n int, opts ...Option) (*Array, error) {
	return tensor.Identity(n, opts...)
}

// Eye creates an n-by-m matrix with ones along the k-th diagonal.
// Recognized options: WithColumns, WithDiagonal, WithDType, WithDevice.
func Eye(n int, opts ...Option) (*Array, error) {
	return tensor.Eye(n, opts...)
}

// Diag extracts the k-th diagonal of a 2-d array as a strided view, or builds
// a square matrix with a 1-d array along the k-th diagonal.
func Diag(v *Array, k int, opts ...Option) (*Array, error) {
	return tensor.Diag(v, k, opts...)
}

// Diagflat builds a square matrix with the flattened elements of v along the
// k-th diagonal. Recognized options: WithDevice.
func Diagflat(v *Array, k int, opts ...Option) (*Array, error) {
	return tensor.Diagflat(v, k, opts...)
}

// Linspace creates a 1-d array of evenly spaced samples from start toward
// stop. Recognized options: WithNum, WithEndpoint, WithDType, WithDevice.
func Linspace(start, stop float64, opts ...Option) (*Array, error) {
	return tensor.Linspace(start, stop, opts...)
}

// AsContiguousArray returns a C-contiguous rendition of a, promoting 0-d
// inputs to shape {1}. Recognized options: WithDType.
func AsContiguousArray(a *Array, opts ...Option) (*Array, error) {
	return tensor.AsContiguousArray(a, opts...)
}
