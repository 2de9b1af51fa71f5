// Package tensor provides the strided array core of the Axon ML framework:
// shape/stride/dtype/device geometry, the Array view type, the per-device
// operation dispatch contract, and the array creation API.
package tensor

// DType is a constraint for Go types that map directly onto an array data type.
// It uses Go generics to ensure compile-time type safety.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// Numeric is the subset of scalar types usable as range and step parameters.
// Plain int is accepted for ergonomics and maps to Int64.
type Numeric interface {
	~float32 | ~float64 | ~int | ~int32 | ~int64 | ~uint8
}

// DataType represents runtime type information for arrays.
type DataType int

// Supported data types for arrays.
const (
	Float16 DataType = iota
	Float32
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// DefaultDType is the dtype used by creation functions when none is given.
const DefaultDType = Float32

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float16:
		return 2
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// IsFloat reports whether the data type is a floating-point variant.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float16, Float32, Float64:
		return true
	default:
		return false
	}
}

// IsInteger reports whether the data type is an integer variant.
func (dt DataType) IsInteger() bool {
	switch dt {
	case Int32, Int64, Uint8:
		return true
	default:
		return false
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// inferDataType infers DataType from a generic type T.
// Float16 has no native Go type and can only be requested explicitly.
func inferDataType[T any](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int:
		return Int64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
