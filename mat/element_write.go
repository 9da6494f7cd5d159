package mat

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	binpkg "github.com/robert-malhotra/go-mat/internal/binary"
	"github.com/robert-malhotra/go-mat/internal/dtype"
)

const (
	// maxFieldName is the longest struct field name the format allows.
	maxFieldName = 63

	// fieldNameWidth is the usual width of one packed field name slot.
	fieldNameWidth = 32
)

// encoder serializes values as miMATRIX elements.
type encoder struct {
	order    binary.ByteOrder
	maxDepth int
}

// encode returns the complete miMATRIX element for one named value.
// Nothing is returned unless the whole value encodes.
func (e *encoder) encode(name string, v Value) ([]byte, error) {
	buf := &binpkg.Buffer{}
	w := binpkg.NewWriter(buf, binpkg.Config{ByteOrder: e.order})
	if err := e.writeMatrix(w, name, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeMatrix writes v as a miMATRIX element. A nil value is written as a
// zero-length element.
func (e *encoder) writeMatrix(w *binpkg.Writer, name string, v Value, depth int) error {
	if depth > e.maxDepth {
		return fmt.Errorf("%w: depth %d", ErrTooDeep, depth)
	}
	if v == nil {
		return w.WriteTag(uint32(dtype.Matrix), 0)
	}
	info, err := classify(v)
	if err != nil {
		return err
	}

	mark, err := w.BeginElement(uint32(dtype.Matrix))
	if err != nil {
		return err
	}
	if err := e.writeArrayHeader(w, info, name); err != nil {
		return err
	}

	switch v := v.(type) {
	case *Matrix:
		err = e.writeFloats(w, transpose(v.Data, v.Rows, v.Cols))
	case *ComplexMatrix:
		if err = e.writeFloats(w, transpose(v.Real.Data, v.Real.Rows, v.Real.Cols)); err == nil {
			err = e.writeFloats(w, transpose(v.Imag.Data, v.Imag.Rows, v.Imag.Cols))
		}
	case *Array:
		err = e.writeFloats(w, v.Data)
	case *ComplexArray:
		if err = e.writeFloats(w, v.Real.Data); err == nil {
			err = e.writeFloats(w, v.Imag.Data)
		}
	case Text:
		err = w.WriteElement(uint32(dtype.UTF16), dtype.PutChars(w.ByteOrder(), utf16.Encode([]rune(string(v)))))
	case *CharArray:
		err = w.WriteElement(uint32(dtype.UTF16), dtype.PutChars(w.ByteOrder(), v.Data))
	case *Logical:
		err = w.WriteElement(uint32(dtype.Uint8), dtype.PutBools(v.Data))
	case *IntArray:
		err = e.writeInts(w, info.flags.Class, v.Data)
	case *Record:
		err = e.writeStruct(w, v.Names(), []*Record{v}, depth)
	case *StructArray:
		err = e.writeStruct(w, v.Fields, v.Elems, depth)
	case *Cell:
		for i, entry := range v.Data {
			if err = e.writeMatrix(w, "", entry, depth+1); err != nil {
				err = fmt.Errorf("cell entry %d: %w", i, err)
				break
			}
		}
	}
	if err != nil {
		return err
	}
	return w.EndElement(mark)
}

// writeArrayHeader writes the flags, dimensions and name subelements.
func (e *encoder) writeArrayHeader(w *binpkg.Writer, info typeInfo, name string) error {
	flags := make([]byte, 8)
	w.ByteOrder().PutUint32(flags, info.flags.Word())
	if err := w.WriteElement(uint32(dtype.Uint32), flags); err != nil {
		return err
	}

	dims := make([]int32, len(info.dims))
	for i, d := range info.dims {
		dims[i] = int32(d)
	}
	if err := w.WriteElement(uint32(dtype.Int32), dtype.PutInt32s(w.ByteOrder(), dims)); err != nil {
		return err
	}
	return w.WriteElement(uint32(dtype.Int8), []byte(name))
}

func (e *encoder) writeFloats(w *binpkg.Writer, values []float64) error {
	return w.WriteElement(uint32(dtype.Double), dtype.PutFloat64s(w.ByteOrder(), values))
}

func (e *encoder) writeInts(w *binpkg.Writer, class dtype.Class, values []int64) error {
	typ, err := class.Storage()
	if err != nil {
		return err
	}
	data, err := dtype.PutInts(typ, w.ByteOrder(), values)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	return w.WriteElement(uint32(typ), data)
}

// writeStruct writes the packed field names followed by every field of
// every element, element by element.
func (e *encoder) writeStruct(w *binpkg.Writer, fields []string, elems []*Record, depth int) error {
	width, err := fieldWidth(fields)
	if err != nil {
		return err
	}
	for i, rec := range elems {
		if rec == nil {
			continue
		}
		for _, name := range rec.Names() {
			if !slices.Contains(fields, name) {
				return fmt.Errorf("%w: element %d has field %q outside the field list", ErrInvalidName, i, name)
			}
		}
	}

	widthBuf := make([]byte, 4)
	w.ByteOrder().PutUint32(widthBuf, uint32(width))
	if err := w.WriteElement(uint32(dtype.Int32), widthBuf); err != nil {
		return err
	}
	names := make([]byte, width*len(fields))
	for i, f := range fields {
		copy(names[i*width:], f)
	}
	if err := w.WriteElement(uint32(dtype.Int8), names); err != nil {
		return err
	}

	for i, rec := range elems {
		for _, f := range fields {
			var v Value
			if rec != nil {
				v, _ = rec.Get(f)
			}
			if err := e.writeMatrix(w, "", v, depth+1); err != nil {
				return fmt.Errorf("field %q of element %d: %w", f, i, err)
			}
		}
	}
	return nil
}

// fieldWidth validates struct field names and returns the width of one
// packed name slot, including room for a terminating NUL.
func fieldWidth(fields []string) (int, error) {
	longest := 0
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := checkName(f); err != nil {
			return 0, err
		}
		if len(f) > maxFieldName {
			return 0, fmt.Errorf("%w: field name %q is longer than %d bytes", ErrInvalidName, f, maxFieldName)
		}
		if seen[f] {
			return 0, fmt.Errorf("%w: field %q", ErrDuplicateIdentifier, f)
		}
		seen[f] = true
		longest = max(longest, len(f))
	}
	if longest < fieldNameWidth {
		return fieldNameWidth, nil
	}
	return (longest + 1 + 7) &^ 7, nil
}

// checkName rejects names that cannot be stored in a name subelement.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidName, name)
	}
	return nil
}
