package tensor

import "fmt"

// Scalar is a dtype-tagged element value used for fills, range parameters and
// single-element access. Integer-constructed scalars keep an exact int64 so
// large range endpoints survive round-tripping.
type Scalar struct {
	dtype DataType
	f     float64
	i     int64
	b     bool
}

// NewScalar creates a Scalar from a Go value, inferring its dtype.
func NewScalar[T interface {
	~float32 | ~float64 | ~int | ~int32 | ~int64 | ~uint8 | ~bool
}](v T) Scalar {
	switch x := any(v).(type) {
	case float32:
		return Scalar{dtype: Float32, f: float64(x), i: int64(x)}
	case float64:
		return Scalar{dtype: Float64, f: x, i: int64(x)}
	case int:
		return Scalar{dtype: Int64, f: float64(x), i: int64(x)}
	case int32:
		return Scalar{dtype: Int32, f: float64(x), i: int64(x)}
	case int64:
		return Scalar{dtype: Int64, f: float64(x), i: x}
	case uint8:
		return Scalar{dtype: Uint8, f: float64(x), i: int64(x)}
	case bool:
		s := Scalar{dtype: Bool, b: x}
		if x {
			s.f, s.i = 1, 1
		}
		return s
	default:
		panic("unsupported scalar type")
	}
}

// scalarOf builds the value v reinterpreted under dtype dt; used for the fixed
// 0/1 fills of Zeros, Ones, Identity and Eye.
func scalarOf(dt DataType, v int64) Scalar {
	return Scalar{dtype: dt, f: float64(v), i: v, b: v != 0}
}

// DType returns the dtype the scalar was constructed with.
func (s Scalar) DType() DataType {
	return s.dtype
}

// Float64 returns the value as float64.
func (s Scalar) Float64() float64 {
	return s.f
}

// Int64 returns the value as int64, truncating floating-point values.
func (s Scalar) Int64() int64 {
	if s.dtype.IsFloat() {
		return int64(s.f)
	}
	return s.i
}

// Bool returns true for any non-zero value.
func (s Scalar) Bool() bool {
	if s.dtype == Bool {
		return s.b
	}
	return s.f != 0 || s.i != 0
}

// String returns a human-readable representation of the scalar.
func (s Scalar) String() string {
	switch {
	case s.dtype == Bool:
		return fmt.Sprintf("%v", s.b)
	case s.dtype.IsInteger():
		return fmt.Sprintf("%d", s.i)
	default:
		return fmt.Sprintf("%g", s.f)
	}
}
