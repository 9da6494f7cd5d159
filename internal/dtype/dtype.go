// Package dtype holds the on-disk type registry of the MAT-file format:
// data element types, array classes, array flags and the conversions
// between raw payload bytes and Go numeric slices.
package dtype

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned for data types or array classes the codec cannot decode.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSizeMismatch is returned when a payload length disagrees with its declared shape.
	ErrSizeMismatch = errors.New("size mismatch")
)

// DataType identifies the type of a data element (the "mi" types).
type DataType uint32

const (
	Int8       DataType = 1
	Uint8      DataType = 2
	Int16      DataType = 3
	Uint16     DataType = 4
	Int32      DataType = 5
	Uint32     DataType = 6
	Single     DataType = 7
	Double     DataType = 9
	Int64      DataType = 12
	Uint64     DataType = 13
	Matrix     DataType = 14
	Compressed DataType = 15
	UTF8       DataType = 16
	UTF16      DataType = 17
	UTF32      DataType = 18
)

var dataTypeNames = map[DataType]string{
	Int8:       "miINT8",
	Uint8:      "miUINT8",
	Int16:      "miINT16",
	Uint16:     "miUINT16",
	Int32:      "miINT32",
	Uint32:     "miUINT32",
	Single:     "miSINGLE",
	Double:     "miDOUBLE",
	Int64:      "miINT64",
	Uint64:     "miUINT64",
	Matrix:     "miMATRIX",
	Compressed: "miCOMPRESSED",
	UTF8:       "miUTF8",
	UTF16:      "miUTF16",
	UTF32:      "miUTF32",
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("mi(%d)", uint32(t))
}

// Width returns the size in bytes of one element of a numeric or
// character data type.
func (t DataType) Width() (int, error) {
	switch t {
	case Int8, Uint8, UTF8:
		return 1, nil
	case Int16, Uint16, UTF16:
		return 2, nil
	case Int32, Uint32, Single, UTF32:
		return 4, nil
	case Double, Int64, Uint64:
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: data type %s has no element width", ErrUnsupportedType, t)
	}
}

// IsNumeric reports whether t holds plain numbers.
func (t DataType) IsNumeric() bool {
	switch t {
	case Int8, Uint8, Int16, Uint16, Int32, Uint32, Single, Double, Int64, Uint64:
		return true
	}
	return false
}

// Class identifies the array class of a miMATRIX element (the "mx" classes).
type Class uint8

const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
)

var classNames = map[Class]string{
	ClassCell:   "cell",
	ClassStruct: "struct",
	ClassObject: "object",
	ClassChar:   "char",
	ClassSparse: "sparse",
	ClassDouble: "double",
	ClassSingle: "single",
	ClassInt8:   "int8",
	ClassUint8:  "uint8",
	ClassInt16:  "int16",
	ClassUint16: "uint16",
	ClassInt32:  "int32",
	ClassUint32: "uint32",
	ClassInt64:  "int64",
	ClassUint64: "uint64",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// IsInteger reports whether c is one of the integer classes.
func (c Class) IsInteger() bool {
	return c >= ClassInt8 && c <= ClassUint64
}

// Storage returns the data type a writer uses for the payload of class c.
func (c Class) Storage() (DataType, error) {
	switch c {
	case ClassDouble:
		return Double, nil
	case ClassSingle:
		return Single, nil
	case ClassChar:
		return UTF16, nil
	case ClassInt8:
		return Int8, nil
	case ClassUint8:
		return Uint8, nil
	case ClassInt16:
		return Int16, nil
	case ClassUint16:
		return Uint16, nil
	case ClassInt32:
		return Int32, nil
	case ClassUint32:
		return Uint32, nil
	case ClassInt64:
		return Int64, nil
	case ClassUint64:
		return Uint64, nil
	default:
		return 0, fmt.Errorf("%w: class %s has no flat payload", ErrUnsupportedType, c)
	}
}

// Array flag bits, stored in the second byte of the flags word.
const (
	FlagLogical uint8 = 0x02
	FlagGlobal  uint8 = 0x04
	FlagComplex uint8 = 0x08
)

// ArrayFlags is the decoded array flags subelement of a miMATRIX element.
type ArrayFlags struct {
	Class   Class
	Complex bool
	Global  bool
	Logical bool
	// NzMax is the maximum number of non-zero elements of a sparse array.
	NzMax uint32
}

// ParseFlags decodes the two 32-bit words of an array flags subelement.
func ParseFlags(word, nzmax uint32) ArrayFlags {
	bits := uint8(word >> 8)
	return ArrayFlags{
		Class:   Class(word),
		Complex: bits&FlagComplex != 0,
		Global:  bits&FlagGlobal != 0,
		Logical: bits&FlagLogical != 0,
		NzMax:   nzmax,
	}
}

// Word encodes the class and flag bits into the first flags word.
func (f ArrayFlags) Word() uint32 {
	var bits uint8
	if f.Complex {
		bits |= FlagComplex
	}
	if f.Global {
		bits |= FlagGlobal
	}
	if f.Logical {
		bits |= FlagLogical
	}
	return uint32(bits)<<8 | uint32(f.Class)
}
