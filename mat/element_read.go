package mat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"

	binpkg "github.com/robert-malhotra/go-mat/internal/binary"
	"github.com/robert-malhotra/go-mat/internal/deflate"
	"github.com/robert-malhotra/go-mat/internal/dtype"
)

// decoder parses miMATRIX elements into values.
type decoder struct {
	order    binary.ByteOrder
	inflate  *deflate.Deflate
	maxDepth int
	logger   *slog.Logger
}

// slot says where an element sits, which decides how empty placeholders decode.
type slot uint8

const (
	slotTop slot = iota
	slotField
	slotCell
)

// readTopLevel reads one top-level element, inflating it first when it is
// compressed.
func (d *decoder) readTopLevel(r *binpkg.Reader) (string, Value, bool, error) {
	start := r.Pos()
	tag, err := r.ReadTag()
	if err != nil {
		return "", nil, false, err
	}

	switch dtype.DataType(tag.Type) {
	case dtype.Matrix:
		name, v, err := d.readMatrix(r, tag, 0, slotTop)
		return name, v, false, err

	case dtype.Compressed:
		if tag.Small {
			return "", nil, true, fmt.Errorf("%w: compressed element at offset %d uses the small form",
				ErrMisalignedElement, start)
		}
		// Compressed elements carry no padding.
		raw, err := r.ReadBytes(int(tag.Length))
		if err != nil {
			return "", nil, true, err
		}
		inner, err := d.inflate.Decode(raw)
		if err != nil {
			return "", nil, true, fmt.Errorf("compressed element at offset %d: %w", start, err)
		}
		d.logger.Debug("inflated element", "offset", start, "stored", tag.Length, "inflated", len(inner))
		ir := binpkg.NewBytesReader(inner, binpkg.Config{ByteOrder: d.order})
		itag, err := ir.ReadTag()
		if err != nil {
			return "", nil, true, err
		}
		if dtype.DataType(itag.Type) != dtype.Matrix {
			return "", nil, true, fmt.Errorf("%w: compressed element wraps %s",
				ErrUnsupportedType, dtype.DataType(itag.Type))
		}
		name, v, err := d.readMatrix(ir, itag, 0, slotTop)
		if err != nil {
			return "", nil, true, err
		}
		if rest, _ := ir.ReadBytes(int(ir.Remaining())); !allZero(rest) {
			return "", nil, true, fmt.Errorf("%w: %d trailing bytes after compressed element",
				ErrMisalignedElement, len(rest))
		}
		return name, v, true, nil

	default:
		return "", nil, false, fmt.Errorf("%w: top-level element of type %s at offset %d",
			ErrUnsupportedType, dtype.DataType(tag.Type), start)
	}
}

// readMatrix reads the body of a miMATRIX element whose tag has been read.
// A zero-length element is the placeholder for an absent value and
// decodes to nil.
func (d *decoder) readMatrix(r *binpkg.Reader, tag binpkg.Tag, depth int, at slot) (string, Value, error) {
	if depth > d.maxDepth {
		return "", nil, fmt.Errorf("%w: depth %d", ErrTooDeep, depth)
	}
	if tag.Small {
		return "", nil, fmt.Errorf("%w: miMATRIX element at offset %d uses the small form",
			ErrMisalignedElement, r.Pos()-8)
	}
	if tag.Length == 0 {
		return "", nil, nil
	}
	if tag.Length%binpkg.Alignment != 0 {
		return "", nil, fmt.Errorf("%w: miMATRIX length %d is not a multiple of %d",
			ErrMisalignedElement, tag.Length, binpkg.Alignment)
	}
	sec, err := r.Section(int64(tag.Length))
	if err != nil {
		return "", nil, err
	}

	info, err := d.readArrayHeader(sec)
	if err != nil {
		return "", nil, err
	}
	name, err := d.readName(sec)
	if err != nil {
		return "", nil, err
	}

	var v Value
	switch info.flags.Class {
	case dtype.ClassCell:
		v, err = d.readCell(sec, info, depth)
	case dtype.ClassStruct:
		v, err = d.readStruct(sec, info, depth)
	case dtype.ClassSparse, dtype.ClassObject:
		err = fmt.Errorf("%w: array class %s", ErrUnsupportedType, info.flags.Class)
	default:
		v, err = d.readLeaf(sec, info)
	}
	if err != nil {
		if name != "" {
			return "", nil, fmt.Errorf("%q: %w", name, err)
		}
		return "", nil, err
	}
	if err := sec.ExpectEnd(); err != nil {
		return "", nil, err
	}

	// Unset cell slots are stored as 0x0 doubles.
	if at == slotCell && isEmptyDouble(v) {
		v = nil
	}
	return name, v, nil
}

// readArrayHeader reads the array flags and dimensions subelements.
func (d *decoder) readArrayHeader(r *binpkg.Reader) (typeInfo, error) {
	tag, data, err := r.ReadElement()
	if err != nil {
		return typeInfo{}, fmt.Errorf("array flags: %w", err)
	}
	if dtype.DataType(tag.Type) != dtype.Uint32 || len(data) != 8 {
		return typeInfo{}, fmt.Errorf("%w: array flags stored as %d bytes of %s",
			ErrSizeMismatch, len(data), dtype.DataType(tag.Type))
	}
	flags := dtype.ParseFlags(d.order.Uint32(data), d.order.Uint32(data[4:]))

	tag, data, err = r.ReadElement()
	if err != nil {
		return typeInfo{}, fmt.Errorf("dimensions: %w", err)
	}
	typ := dtype.DataType(tag.Type)
	width, err := typ.Width()
	if err != nil || !typ.IsNumeric() || typ == dtype.Single || typ == dtype.Double {
		return typeInfo{}, fmt.Errorf("%w: dimensions stored as %s", ErrUnsupportedType, typ)
	}
	if len(data)%width != 0 {
		return typeInfo{}, fmt.Errorf("%w: dimensions payload of %d bytes", ErrSizeMismatch, len(data))
	}
	raw, err := dtype.Int64s(typ, d.order, data, len(data)/width)
	if err != nil {
		return typeInfo{}, fmt.Errorf("dimensions: %w", err)
	}
	if len(raw) < 2 {
		return typeInfo{}, fmt.Errorf("%w: rank %d, need at least 2", ErrSizeMismatch, len(raw))
	}
	dims := make([]int, len(raw))
	for i, v := range raw {
		if v < 0 || v > maxDim {
			return typeInfo{}, fmt.Errorf("%w: dimension %d", ErrSizeMismatch, v)
		}
		dims[i] = int(v)
	}
	if _, err := checkedNumel(dims); err != nil {
		return typeInfo{}, err
	}
	return typeInfo{flags: flags, dims: dims}, nil
}

// readName reads the array name subelement in either tag form.
func (d *decoder) readName(r *binpkg.Reader) (string, error) {
	tag, data, err := r.ReadElement()
	if err != nil {
		return "", fmt.Errorf("array name: %w", err)
	}
	switch dtype.DataType(tag.Type) {
	case dtype.Int8, dtype.Uint8, dtype.UTF8:
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: array name stored as %s", ErrUnsupportedType, dtype.DataType(tag.Type))
	}
}

// readLeaf reads the real and, for complex arrays, imaginary data subelements.
func (d *decoder) readLeaf(r *binpkg.Reader, info typeInfo) (Value, error) {
	tag, data, err := r.ReadElement()
	if err != nil {
		return nil, fmt.Errorf("real part: %w", err)
	}
	realPart := payload{typ: dtype.DataType(tag.Type), data: data}

	var imagPart payload
	if info.flags.Complex {
		tag, data, err = r.ReadElement()
		if err != nil {
			return nil, fmt.Errorf("imaginary part: %w", err)
		}
		imagPart = payload{typ: dtype.DataType(tag.Type), data: data}
	}
	return interpret(info, realPart, imagPart, d.order)
}

// readCell reads one nested element per cell entry, in column-major order.
func (d *decoder) readCell(r *binpkg.Reader, info typeInfo, depth int) (Value, error) {
	n, err := d.nestedCount(r, info.dims, 1)
	if err != nil {
		return nil, err
	}
	cell := &Cell{Shape: info.dims, Data: make([]Value, n)}
	for i := range cell.Data {
		v, err := d.readNested(r, depth, slotCell)
		if err != nil {
			return nil, fmt.Errorf("cell entry %d: %w", i, err)
		}
		cell.Data[i] = v
	}
	return cell, nil
}

// readStruct reads the field names and then, for each struct element in
// column-major order, one nested element per field.
func (d *decoder) readStruct(r *binpkg.Reader, info typeInfo, depth int) (Value, error) {
	tag, data, err := r.ReadElement()
	if err != nil {
		return nil, fmt.Errorf("field name length: %w", err)
	}
	if dtype.DataType(tag.Type) != dtype.Int32 || len(data) != 4 {
		return nil, fmt.Errorf("%w: field name length stored as %d bytes of %s",
			ErrSizeMismatch, len(data), dtype.DataType(tag.Type))
	}
	width := int(int32(d.order.Uint32(data)))

	tag, data, err = r.ReadElement()
	if err != nil {
		return nil, fmt.Errorf("field names: %w", err)
	}
	if t := dtype.DataType(tag.Type); t != dtype.Int8 && t != dtype.Uint8 {
		return nil, fmt.Errorf("%w: field names stored as %s", ErrUnsupportedType, t)
	}
	if width < 0 || (width == 0 && len(data) != 0) || (width > 0 && len(data)%width != 0) {
		return nil, fmt.Errorf("%w: %d bytes of field names with width %d", ErrSizeMismatch, len(data), width)
	}
	var fields []string
	seen := make(map[string]bool)
	for off := 0; off < len(data); off += width {
		name := data[off : off+width]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		if seen[string(name)] {
			return nil, fmt.Errorf("%w: field %q", ErrDuplicateIdentifier, name)
		}
		seen[string(name)] = true
		fields = append(fields, string(name))
	}

	n, err := d.nestedCount(r, info.dims, len(fields))
	if err != nil {
		return nil, err
	}
	elems := make([]*Record, n)
	for i := range elems {
		rec := NewRecord()
		for _, field := range fields {
			v, err := d.readNested(r, depth, slotField)
			if err != nil {
				return nil, fmt.Errorf("field %q of element %d: %w", field, i, err)
			}
			rec.Set(field, v)
		}
		elems[i] = rec
	}

	if len(info.dims) == 2 && info.dims[0] == 1 && info.dims[1] == 1 {
		return elems[0], nil
	}
	return &StructArray{Shape: info.dims, Fields: fields, Elems: elems}, nil
}

// nestedCount returns the number of elements of dims, checking that the
// section can hold perElem nested elements for each before anything is
// allocated. Every nested element takes at least one 8-byte tag.
func (d *decoder) nestedCount(r *binpkg.Reader, dims []int, perElem int) (int, error) {
	n, err := checkedNumel(dims)
	if err != nil {
		return 0, err
	}
	if perElem > 0 && int64(n) > r.Remaining()/8/int64(perElem) {
		return 0, fmt.Errorf("%w: %d nested elements declared, %d bytes remain",
			ErrTruncatedStream, n*perElem, r.Remaining())
	}
	return n, nil
}

func (d *decoder) readNested(r *binpkg.Reader, depth int, at slot) (Value, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	if dtype.DataType(tag.Type) != dtype.Matrix {
		return nil, fmt.Errorf("%w: nested element of type %s", ErrUnsupportedType, dtype.DataType(tag.Type))
	}
	_, v, err := d.readMatrix(r, tag, depth+1, at)
	return v, err
}

func isEmptyDouble(v Value) bool {
	m, ok := v.(*Matrix)
	return ok && m.Rows == 0 && m.Cols == 0
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
