package mat

import (
	"fmt"
	"unicode/utf16"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindMatrix Kind = iota + 1
	KindComplexMatrix
	KindArray
	KindComplexArray
	KindText
	KindChar
	KindLogical
	KindInt
	KindRecord
	KindStructArray
	KindCell
)

var kindNames = [...]string{
	KindMatrix:        "matrix",
	KindComplexMatrix: "complex matrix",
	KindArray:         "array",
	KindComplexArray:  "complex array",
	KindText:          "text",
	KindChar:          "char array",
	KindLogical:       "logical",
	KindInt:           "integer array",
	KindRecord:        "record",
	KindStructArray:   "struct array",
	KindCell:          "cell",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a decoded MAT-file value. The set of implementations is closed:
// *Matrix, *ComplexMatrix, *Array, *ComplexArray, Text, *CharArray,
// *Logical, *IntArray, *Record, *StructArray and *Cell.
type Value interface {
	Kind() Kind
	// Dims returns the shape of the value. Its length is always at least 2.
	Dims() []int
	isValue()
}

// Matrix is a real rank-2 double matrix stored row-major.
type Matrix struct {
	Rows, Cols int
	Data       []float64
}

// NewMatrix returns a rows×cols matrix over data in row-major order.
// A nil data slice allocates a zero matrix.
func NewMatrix(rows, cols int, data []float64) *Matrix {
	if data == nil {
		data = make([]float64, rows*cols)
	}
	return &Matrix{Rows: rows, Cols: cols, Data: data}
}

// Scalar returns a 1×1 matrix.
func Scalar(v float64) *Matrix {
	return NewMatrix(1, 1, []float64{v})
}

// RowVector returns a 1×n matrix.
func RowVector(values ...float64) *Matrix {
	return NewMatrix(1, len(values), values)
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

// Set sets the element at row i, column j.
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.Cols+j] = v
}

func (m *Matrix) Kind() Kind  { return KindMatrix }
func (m *Matrix) Dims() []int { return []int{m.Rows, m.Cols} }
func (m *Matrix) isValue()    {}

// ComplexMatrix is a complex rank-2 double matrix held as two real parts
// of the same shape.
type ComplexMatrix struct {
	Real, Imag *Matrix
}

// NewComplexMatrix returns a rows×cols complex matrix from row-major parts.
func NewComplexMatrix(rows, cols int, re, im []float64) *ComplexMatrix {
	return &ComplexMatrix{Real: NewMatrix(rows, cols, re), Imag: NewMatrix(rows, cols, im)}
}

// At returns the element at row i, column j.
func (c *ComplexMatrix) At(i, j int) complex128 {
	return complex(c.Real.At(i, j), c.Imag.At(i, j))
}

func (c *ComplexMatrix) Kind() Kind  { return KindComplexMatrix }
func (c *ComplexMatrix) Dims() []int { return c.Real.Dims() }
func (c *ComplexMatrix) isValue()    {}

// Array is a real double array of any rank, stored in column-major order
// (first dimension varies fastest), matching the on-disk layout.
// Rank-2 arrays decode as *Matrix instead.
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray returns an array of the given shape. A nil data slice
// allocates a zero array.
func NewArray(shape []int, data []float64) *Array {
	if data == nil {
		data = make([]float64, numel(shape))
	}
	return &Array{Shape: shape, Data: data}
}

// At returns the element at the given multi-index.
func (a *Array) At(idx ...int) float64 {
	return a.Data[offset(a.Shape, idx)]
}

// Set sets the element at the given multi-index.
func (a *Array) Set(v float64, idx ...int) {
	a.Data[offset(a.Shape, idx)] = v
}

func (a *Array) Kind() Kind  { return KindArray }
func (a *Array) Dims() []int { return a.Shape }
func (a *Array) isValue()    {}

// ComplexArray is a complex double array of rank 3 or more.
type ComplexArray struct {
	Real, Imag *Array
}

// At returns the element at the given multi-index.
func (c *ComplexArray) At(idx ...int) complex128 {
	k := offset(c.Real.Shape, idx)
	return complex(c.Real.Data[k], c.Imag.Data[k])
}

func (c *ComplexArray) Kind() Kind  { return KindComplexArray }
func (c *ComplexArray) Dims() []int { return c.Real.Shape }
func (c *ComplexArray) isValue()    {}

// Text is a character row or column vector.
type Text string

func (t Text) Kind() Kind { return KindText }

// Dims reports the shape the text is written with: one row of UTF-16 code units.
func (t Text) Dims() []int { return []int{1, len(utf16.Encode([]rune(string(t))))} }
func (t Text) isValue()    {}

// CharArray is a character array that is not a vector, stored as UTF-16
// code units in column-major order.
type CharArray struct {
	Shape []int
	Data  []uint16
}

// NewCharArray builds a rank-2 character matrix from equal-length rows.
func NewCharArray(rows ...string) (*CharArray, error) {
	units := make([][]uint16, len(rows))
	cols := 0
	for i, row := range rows {
		units[i] = utf16.Encode([]rune(row))
		if i == 0 {
			cols = len(units[i])
		} else if len(units[i]) != cols {
			return nil, fmt.Errorf("%w: row %d has %d characters, expected %d",
				ErrSizeMismatch, i, len(units[i]), cols)
		}
	}
	c := &CharArray{Shape: []int{len(rows), cols}, Data: make([]uint16, len(rows)*cols)}
	for i := range units {
		for j, u := range units[i] {
			c.Data[j*len(rows)+i] = u
		}
	}
	return c, nil
}

// Row returns row i of a rank-2 character array as a string.
func (c *CharArray) Row(i int) string {
	rows, cols := c.Shape[0], numel(c.Shape[1:])
	units := make([]uint16, cols)
	for j := range units {
		units[j] = c.Data[j*rows+i]
	}
	return string(utf16.Decode(units))
}

func (c *CharArray) Kind() Kind  { return KindChar }
func (c *CharArray) Dims() []int { return c.Shape }
func (c *CharArray) isValue()    {}

// Logical is a boolean array stored in column-major order.
type Logical struct {
	Shape []int
	Data  []bool
}

// NewLogical returns a 1×n logical row vector.
func NewLogical(values ...bool) *Logical {
	if values == nil {
		values = []bool{}
	}
	return &Logical{Shape: []int{1, len(values)}, Data: values}
}

// At returns the element at the given multi-index.
func (l *Logical) At(idx ...int) bool {
	return l.Data[offset(l.Shape, idx)]
}

func (l *Logical) Kind() Kind  { return KindLogical }
func (l *Logical) Dims() []int { return l.Shape }
func (l *Logical) isValue()    {}

// IntClass is the storage class of an IntArray.
type IntClass uint8

const (
	Int8 IntClass = iota + 1
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
)

var intClassNames = [...]string{
	Int8:   "int8",
	Uint8:  "uint8",
	Int16:  "int16",
	Uint16: "uint16",
	Int32:  "int32",
	Uint32: "uint32",
	Int64:  "int64",
}

func (c IntClass) String() string {
	if int(c) < len(intClassNames) && intClassNames[c] != "" {
		return intClassNames[c]
	}
	return fmt.Sprintf("intclass(%d)", uint8(c))
}

// Width returns the width of the class in bits.
func (c IntClass) Width() int {
	switch c {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32:
		return 32
	case Int64:
		return 64
	}
	return 0
}

// Signed reports whether the class is signed.
func (c IntClass) Signed() bool {
	return c == Int8 || c == Int16 || c == Int32 || c == Int64
}

// IntArray is an integer array stored in column-major order. Values are
// held as int64 regardless of class so that every supported class is
// represented exactly.
type IntArray struct {
	Class IntClass
	Shape []int
	Data  []int64
}

// NewIntArray returns an integer array of the given class and shape.
func NewIntArray(class IntClass, shape []int, data []int64) *IntArray {
	if data == nil {
		data = make([]int64, numel(shape))
	}
	return &IntArray{Class: class, Shape: shape, Data: data}
}

// NewInt32s returns a 1×n int32 row vector.
func NewInt32s(values ...int32) *IntArray {
	data := make([]int64, len(values))
	for i, v := range values {
		data[i] = int64(v)
	}
	return NewIntArray(Int32, []int{1, len(values)}, data)
}

// NewUint32s returns a 1×n uint32 row vector.
func NewUint32s(values ...uint32) *IntArray {
	data := make([]int64, len(values))
	for i, v := range values {
		data[i] = int64(v)
	}
	return NewIntArray(Uint32, []int{1, len(values)}, data)
}

// NewInt64s returns a 1×n int64 row vector.
func NewInt64s(values ...int64) *IntArray {
	data := make([]int64, len(values))
	copy(data, values)
	return NewIntArray(Int64, []int{1, len(values)}, data)
}

// At returns the element at the given multi-index.
func (a *IntArray) At(idx ...int) int64 {
	return a.Data[offset(a.Shape, idx)]
}

func (a *IntArray) Kind() Kind  { return KindInt }
func (a *IntArray) Dims() []int { return a.Shape }
func (a *IntArray) isValue()    {}

// Record is a 1×1 struct: an ordered mapping from field name to Value.
// A field may hold nil when the stored field was an empty placeholder.
type Record struct {
	fields fieldList
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{}
}

// Set stores v under name. Setting an existing field keeps its position.
func (r *Record) Set(name string, v Value) *Record {
	r.fields.set(name, v)
	return r
}

// Get returns the value of a field.
func (r *Record) Get(name string) (Value, bool) {
	return r.fields.get(name)
}

// Names returns the field names in order.
func (r *Record) Names() []string {
	return r.fields.keys()
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields.names)
}

func (r *Record) Kind() Kind  { return KindRecord }
func (r *Record) Dims() []int { return []int{1, 1} }
func (r *Record) isValue()    {}

// StructArray is an array of records sharing one field set, stored in
// column-major order. Single-element struct arrays decode as *Record.
type StructArray struct {
	Shape  []int
	Fields []string
	Elems  []*Record
}

// NewStructArray returns a struct array whose elements carry the given
// fields, all initially nil.
func NewStructArray(shape []int, fields ...string) *StructArray {
	s := &StructArray{Shape: shape, Fields: fields, Elems: make([]*Record, numel(shape))}
	for i := range s.Elems {
		s.Elems[i] = NewRecord()
		for _, f := range fields {
			s.Elems[i].Set(f, nil)
		}
	}
	return s
}

// At returns the record at the given multi-index.
func (s *StructArray) At(idx ...int) *Record {
	return s.Elems[offset(s.Shape, idx)]
}

func (s *StructArray) Kind() Kind  { return KindStructArray }
func (s *StructArray) Dims() []int { return s.Shape }
func (s *StructArray) isValue()    {}

// Cell is a heterogeneous array of values stored in column-major order.
// Entries may be nil.
type Cell struct {
	Shape []int
	Data  []Value
}

// NewCell returns a cell array of the given shape with all entries nil.
func NewCell(shape ...int) *Cell {
	return &Cell{Shape: shape, Data: make([]Value, numel(shape))}
}

// At returns the entry at the given multi-index.
func (c *Cell) At(idx ...int) Value {
	return c.Data[offset(c.Shape, idx)]
}

// Set sets the entry at the given multi-index.
func (c *Cell) Set(v Value, idx ...int) {
	c.Data[offset(c.Shape, idx)] = v
}

func (c *Cell) Kind() Kind  { return KindCell }
func (c *Cell) Dims() []int { return c.Shape }
func (c *Cell) isValue()    {}
