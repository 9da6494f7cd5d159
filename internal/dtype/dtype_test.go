package dtype

import (
	"encoding/binary"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var le = binary.LittleEndian

func TestFlagsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		flags ArrayFlags
		word  uint32
	}{
		{"double", ArrayFlags{Class: ClassDouble}, 0x06},
		{"complex double", ArrayFlags{Class: ClassDouble, Complex: true}, 0x0806},
		{"logical", ArrayFlags{Class: ClassUint8, Logical: true}, 0x0209},
		{"global cell", ArrayFlags{Class: ClassCell, Global: true}, 0x0401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.word, tt.flags.Word())
			assert.Equal(t, tt.flags, ParseFlags(tt.word, 0))
		})
	}
}

func TestWidth(t *testing.T) {
	for typ, want := range map[DataType]int{
		Int8: 1, Uint8: 1, UTF8: 1,
		Int16: 2, UTF16: 2,
		Int32: 4, Single: 4, UTF32: 4,
		Double: 8, Int64: 8, Uint64: 8,
	} {
		got, err := typ.Width()
		require.NoError(t, err, typ.String())
		assert.Equal(t, want, got, typ.String())
	}

	_, err := Matrix.Width()
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = DataType(8).Width()
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFloat64sFromNarrowStorage(t *testing.T) {
	// Doubles with small integral values are often stored as miUINT8.
	got, err := Float64s(Uint8, le, []byte{0, 1, 255}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 255}, got)

	got, err = Float64s(Int16, le, []byte{0xFE, 0xFF}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2}, got)
}

func TestFloat64sDouble(t *testing.T) {
	data := PutFloat64s(le, []float64{1.5, math.Inf(-1), math.Copysign(0, -1)})
	got, err := Float64s(Double, le, data, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got[0])
	assert.True(t, math.IsInf(got[1], -1))
	assert.True(t, math.Signbit(got[2]))
}

func TestFloat64sSizeMismatch(t *testing.T) {
	_, err := Float64s(Double, le, make([]byte, 12), 2)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = Float64s(Double, le, make([]byte, 16), 1)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	// n*8 wraps to zero for this count.
	huge := 1 << (strconv.IntSize - 3)
	_, err = Float64s(Double, le, nil, huge)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = Int64s(Int64, le, []byte{}, huge)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestInt64sExact(t *testing.T) {
	const big = int64(1234567890123456789)
	data, err := PutInts(Int64, le, []int64{big, -big})
	require.NoError(t, err)

	got, err := Int64s(Int64, le, data, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{big, -big}, got)
}

func TestInt64sRejectsFloatStorage(t *testing.T) {
	_, err := Int64s(Double, le, make([]byte, 8), 1)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestInt64sUint64Overflow(t *testing.T) {
	data := make([]byte, 8)
	le.PutUint64(data, math.MaxUint64)
	_, err := Int64s(Uint64, le, data, 1)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestPutIntsRange(t *testing.T) {
	_, err := PutInts(Uint32, le, []int64{-1})
	assert.Error(t, err)

	_, err = PutInts(Int8, le, []int64{128})
	assert.Error(t, err)

	data, err := PutInts(Uint32, le, []int64{math.MaxUint32})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, data)
}

func TestBools(t *testing.T) {
	got, err := Bools(Uint8, le, []byte{1, 2, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, got)
}

func TestChars(t *testing.T) {
	tests := []struct {
		name string
		typ  DataType
		data []byte
		n    int
	}{
		{"utf16", UTF16, PutChars(le, []uint16{'a', 'b'}), 2},
		{"uint16", Uint16, PutChars(le, []uint16{'a', 'b'}), 2},
		{"utf8", UTF8, []byte("ab"), 2},
		{"uint8", Uint8, []byte("ab"), 2},
		{"utf32", UTF32, []byte{'a', 0, 0, 0, 'b', 0, 0, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Chars(tt.typ, le, tt.data, tt.n)
			require.NoError(t, err)
			assert.Equal(t, []uint16{'a', 'b'}, got)
		})
	}
}

func TestCharsUTF8Multibyte(t *testing.T) {
	got, err := Chars(UTF8, le, []byte("né"), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{'n', 0xE9}, got)

	_, err = Chars(UTF8, le, []byte("né"), 3)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestClassStorage(t *testing.T) {
	st, err := ClassInt64.Storage()
	require.NoError(t, err)
	assert.Equal(t, Int64, st)

	_, err = ClassCell.Storage()
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.True(t, ClassUint32.IsInteger())
	assert.False(t, ClassDouble.IsInteger())
}
