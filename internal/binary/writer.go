package binary

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer writes tagged data through an io.WriterAt.
type Writer struct {
	w     io.WriterAt
	order binary.ByteOrder
	pos   int64
}

// NewWriter creates a binary writer with the given configuration.
func NewWriter(w io.WriterAt, cfg Config) *Writer {
	order := cfg.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{
		w:     w,
		order: order,
	}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying io.WriterAt but has independent position.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{
		w:     w.w,
		order: w.order,
		pos:   offset,
	}
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	w.order.PutUint32(buf, v)
	return w.WriteBytes(buf)
}

// WriteTag writes a long-form element tag.
func (w *Writer) WriteTag(typ uint32, length uint32) error {
	if err := w.WriteUint32(typ); err != nil {
		return err
	}
	return w.WriteUint32(length)
}

// WriteElement writes a complete data element: tag, payload and padding.
// Payloads of 1 to 4 bytes use the small element form.
func (w *Writer) WriteElement(typ uint32, data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("element payload of %d bytes exceeds 32-bit length", len(data))
	}
	if len(data) > 0 && len(data) <= 4 && typ <= 0xFFFF {
		if err := w.WriteUint32(uint32(len(data))<<16 | typ); err != nil {
			return err
		}
		if err := w.WriteBytes(data); err != nil {
			return err
		}
		return w.WriteZeros(4 - len(data))
	}
	if err := w.WriteTag(typ, uint32(len(data))); err != nil {
		return err
	}
	if err := w.WriteBytes(data); err != nil {
		return err
	}
	return w.WritePadding(Alignment)
}

// BeginElement reserves a long-form tag whose length is filled in by
// EndElement. It returns the tag position.
func (w *Writer) BeginElement(typ uint32) (int64, error) {
	mark := w.pos
	if err := w.WriteTag(typ, 0); err != nil {
		return 0, err
	}
	return mark, nil
}

// EndElement patches the length of the element started at mark and pads
// the element to the alignment boundary.
func (w *Writer) EndElement(mark int64) error {
	length := w.pos - mark - 8
	if length < 0 || length > math.MaxUint32 {
		return fmt.Errorf("element at %d has invalid length %d", mark, length)
	}
	if err := w.At(mark + 4).WriteUint32(uint32(length)); err != nil {
		return err
	}
	return w.WritePadding(Alignment)
}

// WritePadding writes zero bytes to align to the given alignment.
func (w *Writer) WritePadding(alignment int64) error {
	if alignment <= 1 {
		return nil
	}
	remainder := w.pos % alignment
	if remainder == 0 {
		return nil
	}
	return w.WriteZeros(int(alignment - remainder))
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	zeros := make([]byte, n)
	return w.WriteBytes(zeros)
}

// ByteOrder returns the configured byte order.
func (w *Writer) ByteOrder() binary.ByteOrder {
	return w.order
}

// Buffer is an in-memory io.WriterAt that grows as needed.
type Buffer struct {
	buf []byte
}

// WriteAt implements io.WriterAt.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if end := int(off) + len(p); end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the buffered data.
func (b *Buffer) Bytes() []byte {
	return b.buf
}
