package mat

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/robert-malhotra/go-mat/internal/dtype"
)

// typeInfo is the on-disk description of a value: its array class, flag
// bits and dimensions.
type typeInfo struct {
	flags dtype.ArrayFlags
	dims  []int
}

var intClasses = map[IntClass]dtype.Class{
	Int8:   dtype.ClassInt8,
	Uint8:  dtype.ClassUint8,
	Int16:  dtype.ClassInt16,
	Uint16: dtype.ClassUint16,
	Int32:  dtype.ClassInt32,
	Uint32: dtype.ClassUint32,
	Int64:  dtype.ClassInt64,
}

var intClassesByDisk = map[dtype.Class]IntClass{
	dtype.ClassInt8:   Int8,
	dtype.ClassUint8:  Uint8,
	dtype.ClassInt16:  Int16,
	dtype.ClassUint16: Uint16,
	dtype.ClassInt32:  Int32,
	dtype.ClassUint32: Uint32,
	dtype.ClassInt64:  Int64,
}

// classify maps a value to the class, flags and dimensions it is written
// with, validating that its shape and data agree.
func classify(v Value) (typeInfo, error) {
	switch v := v.(type) {
	case *Matrix:
		if v == nil {
			break
		}
		dims, err := matrixDims(v)
		if err != nil {
			return typeInfo{}, err
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassDouble}, dims: dims}, nil

	case *ComplexMatrix:
		if v == nil || v.Real == nil || v.Imag == nil {
			return typeInfo{}, fmt.Errorf("%w: complex matrix with missing part", ErrUnsupportedType)
		}
		dims, err := matrixDims(v.Real)
		if err != nil {
			return typeInfo{}, err
		}
		if v.Imag.Rows != v.Real.Rows || v.Imag.Cols != v.Real.Cols || len(v.Imag.Data) != len(v.Real.Data) {
			return typeInfo{}, fmt.Errorf("%w: real and imaginary parts differ in shape", ErrSizeMismatch)
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassDouble, Complex: true}, dims: dims}, nil

	case *Array:
		if v == nil {
			break
		}
		dims, err := shapeFor(v.Shape, len(v.Data))
		if err != nil {
			return typeInfo{}, err
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassDouble}, dims: dims}, nil

	case *ComplexArray:
		if v == nil || v.Real == nil || v.Imag == nil {
			return typeInfo{}, fmt.Errorf("%w: complex array with missing part", ErrUnsupportedType)
		}
		dims, err := shapeFor(v.Real.Shape, len(v.Real.Data))
		if err != nil {
			return typeInfo{}, err
		}
		if len(v.Imag.Data) != len(v.Real.Data) {
			return typeInfo{}, fmt.Errorf("%w: real and imaginary parts differ in size", ErrSizeMismatch)
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassDouble, Complex: true}, dims: dims}, nil

	case Text:
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassChar}, dims: v.Dims()}, nil

	case *CharArray:
		if v == nil {
			break
		}
		dims, err := shapeFor(v.Shape, len(v.Data))
		if err != nil {
			return typeInfo{}, err
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassChar}, dims: dims}, nil

	case *Logical:
		if v == nil {
			break
		}
		dims, err := shapeFor(v.Shape, len(v.Data))
		if err != nil {
			return typeInfo{}, err
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassUint8, Logical: true}, dims: dims}, nil

	case *IntArray:
		if v == nil {
			break
		}
		class, ok := intClasses[v.Class]
		if !ok {
			return typeInfo{}, fmt.Errorf("%w: integer class %s", ErrUnsupportedType, v.Class)
		}
		dims, err := shapeFor(v.Shape, len(v.Data))
		if err != nil {
			return typeInfo{}, err
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: class}, dims: dims}, nil

	case *Record:
		if v == nil {
			break
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassStruct}, dims: []int{1, 1}}, nil

	case *StructArray:
		if v == nil {
			break
		}
		dims, err := shapeFor(v.Shape, len(v.Elems))
		if err != nil {
			return typeInfo{}, err
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassStruct}, dims: dims}, nil

	case *Cell:
		if v == nil {
			break
		}
		dims, err := shapeFor(v.Shape, len(v.Data))
		if err != nil {
			return typeInfo{}, err
		}
		return typeInfo{flags: dtype.ArrayFlags{Class: dtype.ClassCell}, dims: dims}, nil
	}
	return typeInfo{}, fmt.Errorf("%w: cannot encode %T", ErrUnsupportedType, v)
}

func matrixDims(m *Matrix) ([]int, error) {
	if m.Rows < 0 || m.Cols < 0 || m.Rows > maxDim || m.Cols > maxDim {
		return nil, fmt.Errorf("%w: matrix dimensions %dx%d", ErrSizeMismatch, m.Rows, m.Cols)
	}
	if len(m.Data) != m.Rows*m.Cols {
		return nil, fmt.Errorf("%w: %dx%d matrix holds %d elements", ErrSizeMismatch, m.Rows, m.Cols, len(m.Data))
	}
	return []int{m.Rows, m.Cols}, nil
}

// payload is one raw data subelement.
type payload struct {
	typ  dtype.DataType
	data []byte
}

// interpret builds a leaf value (numeric, logical or character) from its
// decoded header and data subelements. imagPart is only used for complex arrays.
func interpret(info typeInfo, realPart, imagPart payload, order binary.ByteOrder) (Value, error) {
	dims := info.dims
	n, err := checkedNumel(dims)
	if err != nil {
		return nil, err
	}
	class := info.flags.Class

	if info.flags.Logical {
		if info.flags.Complex {
			return nil, fmt.Errorf("%w: complex logical array", ErrUnsupportedType)
		}
		values, err := dtype.Bools(realPart.typ, order, realPart.data, n)
		if err != nil {
			return nil, err
		}
		return &Logical{Shape: dims, Data: values}, nil
	}

	switch {
	case class == dtype.ClassChar:
		units, err := dtype.Chars(realPart.typ, order, realPart.data, n)
		if err != nil {
			return nil, err
		}
		if len(dims) == 2 && (dims[0] <= 1 || dims[1] <= 1) {
			return Text(utf16.Decode(units)), nil
		}
		return &CharArray{Shape: dims, Data: units}, nil

	case class == dtype.ClassDouble || class == dtype.ClassSingle:
		re, err := dtype.Float64s(realPart.typ, order, realPart.data, n)
		if err != nil {
			return nil, err
		}
		if !info.flags.Complex {
			if len(dims) == 2 {
				return &Matrix{Rows: dims[0], Cols: dims[1], Data: transpose(re, dims[1], dims[0])}, nil
			}
			return &Array{Shape: dims, Data: re}, nil
		}
		im, err := dtype.Float64s(imagPart.typ, order, imagPart.data, n)
		if err != nil {
			return nil, fmt.Errorf("imaginary part: %w", err)
		}
		if len(dims) == 2 {
			return &ComplexMatrix{
				Real: &Matrix{Rows: dims[0], Cols: dims[1], Data: transpose(re, dims[1], dims[0])},
				Imag: &Matrix{Rows: dims[0], Cols: dims[1], Data: transpose(im, dims[1], dims[0])},
			}, nil
		}
		return &ComplexArray{
			Real: &Array{Shape: dims, Data: re},
			Imag: &Array{Shape: cloneShape(dims), Data: im},
		}, nil

	case class.IsInteger():
		intClass, ok := intClassesByDisk[class]
		if !ok || info.flags.Complex {
			return nil, fmt.Errorf("%w: %s array (complex=%v)", ErrUnsupportedType, class, info.flags.Complex)
		}
		values, err := dtype.Int64s(realPart.typ, order, realPart.data, n)
		if err != nil {
			return nil, err
		}
		return &IntArray{Class: intClass, Shape: dims, Data: values}, nil
	}

	return nil, fmt.Errorf("%w: array class %s", ErrUnsupportedType, class)
}
