// Package binary provides low-level binary I/O for MAT-file data elements.
//
// Every data element starts with an 8-byte tag (data type, byte count)
// followed by the payload and zero padding up to the next 8-byte boundary.
// Payloads of four bytes or fewer may instead use the small element form,
// where the tag packs the byte count and type into a single 32-bit word and
// the payload occupies the remaining four bytes.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Alignment is the boundary every data element is padded to.
const Alignment = 8

var (
	// ErrTruncated is returned when fewer bytes remain than a length field declares.
	ErrTruncated = errors.New("truncated stream")

	// ErrMisaligned is returned when an element does not end on its declared boundary.
	ErrMisaligned = errors.New("misaligned element")
)

// Tag is a decoded data element tag.
type Tag struct {
	Type   uint32
	Length uint32
	// Small is set when the element used the packed 8-byte form.
	Small bool
}

// Reader reads tagged data from an io.ReaderAt, confined to a byte range.
// All reads are bounds-checked against the range before any allocation.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	base  int64 // alignment origin
	pos   int64
	end   int64
}

// Config holds reader and writer configuration, taken from the file header.
type Config struct {
	ByteOrder binary.ByteOrder
}

// NewReader creates a reader over the first size bytes of r.
func NewReader(r io.ReaderAt, size int64, cfg Config) *Reader {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{
		r:     r,
		order: order,
		end:   size,
	}
}

// NewBytesReader creates a reader over an in-memory buffer.
func NewBytesReader(data []byte, cfg Config) *Reader {
	return NewReader(bytesReaderAt(data), int64(len(data)), cfg)
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt and limit but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:     r.r,
		order: r.order,
		base:  r.base,
		pos:   offset,
		end:   r.end,
	}
}

// Section returns a reader confined to the next n bytes and advances r past them.
func (r *Reader) Section(n int64) (*Reader, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: section of %d bytes at offset %d, %d remaining",
			ErrTruncated, n, r.pos, r.Remaining())
	}
	sub := &Reader{
		r:     r.r,
		order: r.order,
		base:  r.pos,
		pos:   r.pos,
		end:   r.pos + n,
	}
	r.pos += n
	return sub, nil
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Remaining returns the number of bytes left before the limit.
func (r *Reader) Remaining() int64 {
	if r.pos >= r.end {
		return 0
	}
	return r.end - r.pos
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if int64(n) > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, %d remaining",
			ErrTruncated, n, r.pos, r.Remaining())
	}
	buf := make([]byte, n)
	read, err := r.r.ReadAt(buf, r.pos)
	if read < n {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: short read at offset %d", ErrTruncated, r.pos)
		}
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadTag reads a data element tag in either the long or the small form.
func (r *Reader) ReadTag() (Tag, error) {
	first, err := r.ReadUint32()
	if err != nil {
		return Tag{}, err
	}
	if n := first >> 16; n != 0 {
		if n > 4 {
			return Tag{}, fmt.Errorf("%w: small element at offset %d declares %d bytes",
				ErrMisaligned, r.pos-4, n)
		}
		return Tag{Type: first & 0xFFFF, Length: n, Small: true}, nil
	}
	length, err := r.ReadUint32()
	if err != nil {
		return Tag{}, err
	}
	return Tag{Type: first, Length: length}, nil
}

// ReadPayload reads the payload that follows tag and consumes its padding.
func (r *Reader) ReadPayload(tag Tag) ([]byte, error) {
	if tag.Small {
		buf, err := r.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		return buf[:tag.Length], nil
	}
	data, err := r.ReadBytes(int(tag.Length))
	if err != nil {
		return nil, err
	}
	if err := r.Align(Alignment); err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// ReadElement reads a tag and its payload.
func (r *Reader) ReadElement() (Tag, []byte, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return Tag{}, nil, err
	}
	data, err := r.ReadPayload(tag)
	if err != nil {
		return Tag{}, nil, err
	}
	return tag, data, nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) error {
	if n < 0 || n > r.Remaining() {
		return fmt.Errorf("%w: cannot skip %d bytes at offset %d", ErrTruncated, n, r.pos)
	}
	r.pos += n
	return nil
}

// Align advances the position to the next multiple of alignment, measured
// from the start of the reader's section. The padding must be present.
func (r *Reader) Align(alignment int64) error {
	if alignment <= 1 {
		return nil
	}
	if remainder := (r.pos - r.base) % alignment; remainder != 0 {
		return r.Skip(alignment - remainder)
	}
	return nil
}

// ExpectEnd verifies that the reader consumed its section exactly.
func (r *Reader) ExpectEnd() error {
	if r.pos != r.end {
		return fmt.Errorf("%w: cursor at %d, element ends at %d", ErrMisaligned, r.pos, r.end)
	}
	return nil
}

// bytesReaderAt adapts a byte slice to io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
