package tensor

import (
	"fmt"
	"unsafe"

	"github.com/axon-ml/axon/internal/graph"
)

// Array is a shape/strides/dtype/device-tagged view over a shared byte buffer.
// It never owns the buffer exclusively: slicing, reversing and broadcasting
// upstream all alias the same bytes through different geometry.
//
// Invariant: offset + RequiredBytes(shape, strides, itemSize) never exceeds the
// buffer capacity. Violating it is a bug in a construction primitive, not a
// recoverable runtime condition, so it is checked with a panic.
type Array struct {
	buf     *buffer
	shape   Shape
	strides Strides
	dtype   DataType
	device  Device
	offset  int // byte offset into buf
	graphs  []graph.ID
}

// newArrayOver wraps an existing buffer without changing its reference count.
func newArrayOver(buf *buffer, shape Shape, strides Strides, dtype DataType, device Device, offset int, graphs []graph.ID) *Array {
	if lo, hi := dataRange(shape, strides, dtype.Size()); offset+lo < 0 || offset+hi > len(buf.data) {
		panic(fmt.Sprintf("array view out of buffer bounds: shape %v strides %v offset %d over %d bytes",
			shape, strides, offset, len(buf.data)))
	}
	return &Array{
		buf:     buf,
		shape:   shape.Clone(),
		strides: strides.Clone(),
		dtype:   dtype,
		device:  device,
		offset:  offset,
		graphs:  append([]graph.ID(nil), graphs...),
	}
}

// view derives a new Array over the same buffer with different geometry.
// The view inherits the source's graph connections.
func (a *Array) view(shape Shape, strides Strides, offset int) *Array {
	a.buf.addRef()
	return newArrayOver(a.buf, shape, strides, a.dtype, a.device, offset, a.graphs)
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// Strides returns the array's byte strides.
func (a *Array) Strides() Strides {
	return a.strides
}

// DType returns the array's data type.
func (a *Array) DType() DataType {
	return a.dtype
}

// Device returns the device that owns the array's memory.
func (a *Array) Device() Device {
	return a.device
}

// Offset returns the byte offset of the array's origin within its buffer.
func (a *Array) Offset() int {
	return a.offset
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	return a.shape.NumElements()
}

// ItemSize returns the byte size of one element.
func (a *Array) ItemSize() int {
	return a.dtype.Size()
}

// IsContiguous reports whether the array has the canonical row-major layout.
func (a *Array) IsContiguous() bool {
	return IsContiguous(a.shape, a.strides, a.dtype.Size())
}

// Bytes returns the raw bytes from the array's origin to the end of its
// buffer. Direct access to underlying memory; use with caution.
func (a *Array) Bytes() []byte {
	return a.buf.data[a.offset:]
}

// Graphs returns the identities of the differentiation graphs the array is
// connected to. The returned slice is a copy.
func (a *Array) Graphs() []graph.ID {
	return append([]graph.ID(nil), a.graphs...)
}

// ConnectedTo reports whether the array is connected to the given graph.
func (a *Array) ConnectedTo(id graph.ID) bool {
	for _, g := range a.graphs {
		if g == id {
			return true
		}
	}
	return false
}

// Connect adds graph connections. Used by the autodiff collaborator when it
// enlists an array into a graph; duplicates are ignored.
func (a *Array) Connect(ids ...graph.ID) {
	for _, id := range ids {
		if !a.ConnectedTo(id) {
			a.graphs = append(a.graphs, id)
		}
	}
}

// byteOffset translates a multi-index into an absolute byte offset.
// Panics on rank or bounds violations.
func (a *Array) byteOffset(indices ...int) int {
	if len(indices) != len(a.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(a.shape), len(indices)))
	}
	off := a.offset
	for i, idx := range indices {
		if idx < 0 || idx >= a.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, a.shape[i]))
		}
		off += idx * a.strides[i]
	}
	return off
}

// At returns the element at the given indices.
func (a *Array) At(indices ...int) Scalar {
	return loadScalar(a.buf.data, a.byteOffset(indices...), a.dtype)
}

// SetAt stores value at the given indices, converting to the array's dtype.
func (a *Array) SetAt(value Scalar, indices ...int) {
	storeScalar(a.buf.data, a.byteOffset(indices...), a.dtype, value)
}

// Item returns the value of a 0-dimensional array.
// Panics if the array is not a scalar.
func (a *Array) Item() Scalar {
	if len(a.shape) != 0 {
		panic(fmt.Sprintf("Item() only works for 0-d arrays, got shape %v", a.shape))
	}
	return loadScalar(a.buf.data, a.offset, a.dtype)
}

// Load reads the element at an absolute byte offset, as produced by
// ForEachOffset. Used by backend op implementations.
func (a *Array) Load(off int) Scalar {
	return loadScalar(a.buf.data, off, a.dtype)
}

// Store writes value at an absolute byte offset, converting to the array's
// dtype. Used by backend op implementations.
func (a *Array) Store(off int, value Scalar) {
	storeScalar(a.buf.data, off, a.dtype, value)
}

// ForEachOffset calls fn with the absolute byte offset of every element in
// row-major index order. Arrays with zero elements produce no calls; a 0-d
// array produces exactly one.
func (a *Array) ForEachOffset(fn func(off int)) {
	if a.NumElements() == 0 {
		return
	}
	if len(a.shape) == 0 {
		fn(a.offset)
		return
	}
	idx := make([]int, len(a.shape))
	off := a.offset
	for {
		fn(off)
		d := len(a.shape) - 1
		for ; d >= 0; d-- {
			idx[d]++
			off += a.strides[d]
			if idx[d] < a.shape[d] {
				break
			}
			off -= a.shape[d] * a.strides[d]
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

// typedSlice returns the buffer region from the array's origin reinterpreted
// as n elements of E. Only valid for C-contiguous arrays.
func typedSlice[E any](a *Array, want DataType) []E {
	if a.dtype != want {
		panic(fmt.Sprintf("array dtype is %s, not %s", a.dtype, want))
	}
	if !a.IsContiguous() {
		panic("typed slice access requires a C-contiguous array")
	}
	n := a.NumElements()
	if n == 0 {
		return nil
	}
	data := a.buf.data[a.offset:]
	return unsafe.Slice((*E)(unsafe.Pointer(&data[0])), n)
}

// AsFloat32 interprets the data as []float32.
// Panics unless the array is C-contiguous with dtype Float32.
func (a *Array) AsFloat32() []float32 {
	return typedSlice[float32](a, Float32)
}

// AsFloat64 interprets the data as []float64.
// Panics unless the array is C-contiguous with dtype Float64.
func (a *Array) AsFloat64() []float64 {
	return typedSlice[float64](a, Float64)
}

// AsInt32 interprets the data as []int32.
// Panics unless the array is C-contiguous with dtype Int32.
func (a *Array) AsInt32() []int32 {
	return typedSlice[int32](a, Int32)
}

// AsInt64 interprets the data as []int64.
// Panics unless the array is C-contiguous with dtype Int64.
func (a *Array) AsInt64() []int64 {
	return typedSlice[int64](a, Int64)
}

// AsUint8 interprets the data as []uint8.
// Panics unless the array is C-contiguous with dtype Uint8.
func (a *Array) AsUint8() []uint8 {
	return typedSlice[uint8](a, Uint8)
}

// AsBool interprets the data as []bool.
// Panics unless the array is C-contiguous with dtype Bool.
func (a *Array) AsBool() []bool {
	return typedSlice[bool](a, Bool)
}

// Clone creates a shallow copy sharing the buffer with reference counting.
// Both views see the same bytes; use Copy for an independent buffer.
func (a *Array) Clone() *Array {
	return a.view(a.shape, a.strides, a.offset)
}

// Release decrements the buffer's reference count, deallocating at zero.
func (a *Array) Release() {
	a.buf.release()
}

// IsUnique reports whether this array is the only view of its buffer.
func (a *Array) IsUnique() bool {
	return a.buf.isUnique()
}

// String returns a human-readable representation of the array.
func (a *Array) String() string {
	return fmt.Sprintf("Array[%s]%v on %s", a.dtype, a.shape, a.device)
}
