package dtype

// Payloads are converted according to the data type of the subelement that
// carries them, not the array class: writers routinely store a double array
// in the narrowest integer type that represents it exactly, so every numeric
// data type must convert to every numeric destination.

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
	"unicode/utf8"
)

// checkLength verifies that data holds exactly n elements of type t.
func checkLength(t DataType, data []byte, n int) (int, error) {
	width, err := t.Width()
	if err != nil {
		return 0, err
	}
	// n is bounded by the payload before multiplying so n*width cannot wrap.
	if n < 0 || n > len(data)/width || len(data) != n*width {
		return 0, fmt.Errorf("%w: %s payload has %d bytes, expected %d elements of %d bytes",
			ErrSizeMismatch, t, len(data), n, width)
	}
	return width, nil
}

// Float64s converts a numeric payload of n elements to float64.
func Float64s(t DataType, order binary.ByteOrder, data []byte, n int) ([]float64, error) {
	if !t.IsNumeric() {
		return nil, fmt.Errorf("%w: %s is not numeric", ErrUnsupportedType, t)
	}
	width, err := checkLength(t, data, n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		b := data[i*width:]
		switch t {
		case Int8:
			out[i] = float64(int8(b[0]))
		case Uint8:
			out[i] = float64(b[0])
		case Int16:
			out[i] = float64(int16(order.Uint16(b)))
		case Uint16:
			out[i] = float64(order.Uint16(b))
		case Int32:
			out[i] = float64(int32(order.Uint32(b)))
		case Uint32:
			out[i] = float64(order.Uint32(b))
		case Single:
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case Double:
			out[i] = math.Float64frombits(order.Uint64(b))
		case Int64:
			out[i] = float64(int64(order.Uint64(b)))
		case Uint64:
			out[i] = float64(order.Uint64(b))
		}
	}
	return out, nil
}

// Int64s converts an integer payload of n elements to int64 without loss.
func Int64s(t DataType, order binary.ByteOrder, data []byte, n int) ([]int64, error) {
	switch t {
	case Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64:
	default:
		return nil, fmt.Errorf("%w: integer array stored as %s", ErrUnsupportedType, t)
	}
	width, err := checkLength(t, data, n)
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		b := data[i*width:]
		switch t {
		case Int8:
			out[i] = int64(int8(b[0]))
		case Uint8:
			out[i] = int64(b[0])
		case Int16:
			out[i] = int64(int16(order.Uint16(b)))
		case Uint16:
			out[i] = int64(order.Uint16(b))
		case Int32:
			out[i] = int64(int32(order.Uint32(b)))
		case Uint32:
			out[i] = int64(order.Uint32(b))
		case Int64:
			out[i] = int64(order.Uint64(b))
		case Uint64:
			v := order.Uint64(b)
			if v > math.MaxInt64 {
				return nil, fmt.Errorf("%w: uint64 value %d overflows int64", ErrUnsupportedType, v)
			}
			out[i] = int64(v)
		}
	}
	return out, nil
}

// Bools converts a numeric payload of n elements to booleans; nonzero is true.
func Bools(t DataType, order binary.ByteOrder, data []byte, n int) ([]bool, error) {
	values, err := Float64s(t, order, data, n)
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i, v := range values {
		out[i] = v != 0
	}
	return out, nil
}

// Chars converts a character payload of n characters to UTF-16 code units.
func Chars(t DataType, order binary.ByteOrder, data []byte, n int) ([]uint16, error) {
	switch t {
	case Uint16, UTF16, Int16:
		if _, err := checkLength(t, data, n); err != nil {
			return nil, err
		}
		out := make([]uint16, n)
		for i := range out {
			out[i] = order.Uint16(data[2*i:])
		}
		return out, nil

	case Uint8, Int8:
		if _, err := checkLength(t, data, n); err != nil {
			return nil, err
		}
		out := make([]uint16, n)
		for i, b := range data {
			out[i] = uint16(b)
		}
		return out, nil

	case UTF8:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: invalid UTF-8 character data", ErrSizeMismatch)
		}
		out := utf16.Encode([]rune(string(data)))
		if len(out) != n {
			return nil, fmt.Errorf("%w: UTF-8 payload decodes to %d characters, expected %d",
				ErrSizeMismatch, len(out), n)
		}
		return out, nil

	case UTF32, Uint32, Int32:
		if _, err := checkLength(t, data, n); err != nil {
			return nil, err
		}
		out := make([]uint16, n)
		for i := range out {
			r := order.Uint32(data[4*i:])
			if r > 0xFFFF {
				r = utf8.RuneError
			}
			out[i] = uint16(r)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: character data stored as %s", ErrUnsupportedType, t)
	}
}
