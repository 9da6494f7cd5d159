package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PutFloat64s encodes values as a miDOUBLE payload.
func PutFloat64s(order binary.ByteOrder, values []float64) []byte {
	data := make([]byte, 8*len(values))
	for i, v := range values {
		order.PutUint64(data[8*i:], math.Float64bits(v))
	}
	return data
}

// PutInts encodes values as a payload of integer type t.
// Values outside the range of t are rejected.
func PutInts(t DataType, order binary.ByteOrder, values []int64) ([]byte, error) {
	lo, hi, err := intRange(t)
	if err != nil {
		return nil, err
	}
	width, _ := t.Width()
	data := make([]byte, width*len(values))
	for i, v := range values {
		if v < lo || v > hi {
			return nil, fmt.Errorf("value %d at index %d out of range for %s", v, i, t)
		}
		b := data[i*width:]
		switch width {
		case 1:
			b[0] = byte(v)
		case 2:
			order.PutUint16(b, uint16(v))
		case 4:
			order.PutUint32(b, uint32(v))
		case 8:
			order.PutUint64(b, uint64(v))
		}
	}
	return data, nil
}

// PutBools encodes logical values as a miUINT8 payload.
func PutBools(values []bool) []byte {
	data := make([]byte, len(values))
	for i, v := range values {
		if v {
			data[i] = 1
		}
	}
	return data
}

// PutChars encodes UTF-16 code units as a miUTF16 payload.
func PutChars(order binary.ByteOrder, units []uint16) []byte {
	data := make([]byte, 2*len(units))
	for i, u := range units {
		order.PutUint16(data[2*i:], u)
	}
	return data
}

// PutInt32s encodes values as a miINT32 payload.
func PutInt32s(order binary.ByteOrder, values []int32) []byte {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		order.PutUint32(data[4*i:], uint32(v))
	}
	return data
}

func intRange(t DataType) (int64, int64, error) {
	switch t {
	case Int8:
		return math.MinInt8, math.MaxInt8, nil
	case Uint8:
		return 0, math.MaxUint8, nil
	case Int16:
		return math.MinInt16, math.MaxInt16, nil
	case Uint16:
		return 0, math.MaxUint16, nil
	case Int32:
		return math.MinInt32, math.MaxInt32, nil
	case Uint32:
		return 0, math.MaxUint32, nil
	case Int64:
		return math.MinInt64, math.MaxInt64, nil
	case Uint64:
		return 0, math.MaxInt64, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s is not an integer type", ErrUnsupportedType, t)
	}
}
