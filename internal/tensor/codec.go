package tensor

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"
)

// loadScalar reads one element of dtype dt at byte offset off.
// Multi-byte dtypes are stored little-endian.
func loadScalar(data []byte, off int, dt DataType) Scalar {
	switch dt {
	case Float16:
		v := float16.Frombits(binary.LittleEndian.Uint16(data[off:])).Float32()
		return Scalar{dtype: Float16, f: float64(v), i: int64(v)}
	case Float32:
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		return Scalar{dtype: Float32, f: float64(v), i: int64(v)}
	case Float64:
		v := math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
		return Scalar{dtype: Float64, f: v, i: int64(v)}
	case Int32:
		v := int32(binary.LittleEndian.Uint32(data[off:]))
		return Scalar{dtype: Int32, f: float64(v), i: int64(v)}
	case Int64:
		v := int64(binary.LittleEndian.Uint64(data[off:]))
		return Scalar{dtype: Int64, f: float64(v), i: v}
	case Uint8:
		v := data[off]
		return Scalar{dtype: Uint8, f: float64(v), i: int64(v)}
	case Bool:
		v := data[off] != 0
		s := Scalar{dtype: Bool, b: v}
		if v {
			s.f, s.i = 1, 1
		}
		return s
	default:
		panic("unknown data type")
	}
}

// storeScalar writes s at byte offset off, converting to dtype dt.
// Float-to-integer conversion truncates; any non-zero value stores as true.
func storeScalar(data []byte, off int, dt DataType, s Scalar) {
	switch dt {
	case Float16:
		binary.LittleEndian.PutUint16(data[off:], float16.Fromfloat32(float32(s.Float64())).Bits())
	case Float32:
		binary.LittleEndian.PutUint32(data[off:], math.Float32bits(float32(s.Float64())))
	case Float64:
		binary.LittleEndian.PutUint64(data[off:], math.Float64bits(s.Float64()))
	case Int32:
		binary.LittleEndian.PutUint32(data[off:], uint32(int32(s.Int64())))
	case Int64:
		binary.LittleEndian.PutUint64(data[off:], uint64(s.Int64()))
	case Uint8:
		data[off] = uint8(s.Int64())
	case Bool:
		if s.Bool() {
			data[off] = 1
		} else {
			data[off] = 0
		}
	default:
		panic("unknown data type")
	}
}
