package binary

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWriterAt(t *testing.T) {
	w := NewWriter(&Buffer{}, Config{})

	w2 := w.At(32)
	if w2.pos != 32 {
		t.Errorf("expected position 32, got %d", w2.pos)
	}
	// Original writer should be unchanged
	if w.pos != 0 {
		t.Errorf("expected original position 0, got %d", w.pos)
	}
}

func TestWriteBytes(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	data := []byte{0x01, 0x02, 0x03, 0x04}
	if err := w.WriteBytes(data); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}

	if w.pos != 4 {
		t.Errorf("expected position 4, got %d", w.pos)
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("expected %v, got %v", data, buf.Bytes())
	}
}

func TestWriteUint32(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	if err := w.WriteUint32(0x12345678); err != nil {
		t.Fatalf("WriteUint32 failed: %v", err)
	}

	// Little-endian: low byte first
	expected := []byte{0x78, 0x56, 0x34, 0x12}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestWriteElementLongForm(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	if err := w.WriteElement(1, []byte("hello")); err != nil {
		t.Fatalf("WriteElement failed: %v", err)
	}

	expected := []byte{
		0x01, 0, 0, 0, 0x05, 0, 0, 0,
		'h', 'e', 'l', 'l', 'o', 0, 0, 0,
	}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestWriteElementSmallForm(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	if err := w.WriteElement(1, []byte("ab")); err != nil {
		t.Fatalf("WriteElement failed: %v", err)
	}

	expected := []byte{0x01, 0x00, 0x02, 0x00, 'a', 'b', 0, 0}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestWriteElementEmpty(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	if err := w.WriteElement(1, nil); err != nil {
		t.Fatalf("WriteElement failed: %v", err)
	}
	if len(buf.Bytes()) != 8 {
		t.Errorf("empty element should be a bare tag, got %d bytes", len(buf.Bytes()))
	}
}

func TestBeginEndElement(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	mark, err := w.BeginElement(14)
	if err != nil {
		t.Fatalf("BeginElement failed: %v", err)
	}
	if err := w.WriteElement(1, []byte("abcdef")); err != nil {
		t.Fatalf("WriteElement failed: %v", err)
	}
	if err := w.EndElement(mark); err != nil {
		t.Fatalf("EndElement failed: %v", err)
	}

	r := NewBytesReader(buf.Bytes(), Config{})
	tag, err := r.ReadTag()
	if err != nil {
		t.Fatalf("ReadTag failed: %v", err)
	}
	if tag.Type != 14 || tag.Length != 16 {
		t.Errorf("expected type 14 length 16, got %+v", tag)
	}
}

func TestWritePadding(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	w.WriteBytes([]byte{0xFF, 0xFF, 0xFF})
	if err := w.WritePadding(8); err != nil {
		t.Fatalf("WritePadding failed: %v", err)
	}

	if w.pos != 8 {
		t.Errorf("expected position 8, got %d", w.pos)
	}

	// Verify zeros were written
	for i := 3; i < 8; i++ {
		if buf.Bytes()[i] != 0 {
			t.Errorf("expected zero at position %d, got 0x%02X", i, buf.Bytes()[i])
		}
	}
}

func TestWriteZeros(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{})

	// First write some non-zero data
	w.WriteBytes([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	// Reset position
	w = w.At(0)
	if err := w.WriteZeros(4); err != nil {
		t.Fatalf("WriteZeros failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		if buf.Bytes()[i] != 0 {
			t.Errorf("expected zero at position %d, got 0x%02X", i, buf.Bytes()[i])
		}
	}
}

func TestWriterRoundTrip(t *testing.T) {
	// Test that what we write can be read back by the Reader
	buf := &Buffer{}
	cfg := Config{ByteOrder: binary.BigEndian}
	w := NewWriter(buf, cfg)

	w.WriteUint32(0xDEADBEEF)
	w.WriteElement(5, []byte{1, 2, 3, 4, 5, 6})
	w.WriteElement(2, []byte{9})

	r := NewBytesReader(buf.Bytes(), cfg)

	v32, _ := r.ReadUint32()
	if v32 != 0xDEADBEEF {
		t.Errorf("uint32: expected 0xDEADBEEF, got 0x%08X", v32)
	}

	tag, data, err := r.ReadElement()
	if err != nil {
		t.Fatalf("ReadElement failed: %v", err)
	}
	if tag.Type != 5 || tag.Small || !bytes.Equal(data, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("unexpected long element %+v %v", tag, data)
	}

	tag, data, err = r.ReadElement()
	if err != nil {
		t.Fatalf("ReadElement failed: %v", err)
	}
	if tag.Type != 2 || !tag.Small || !bytes.Equal(data, []byte{9}) {
		t.Errorf("unexpected small element %+v %v", tag, data)
	}
}

func TestWriterBigEndian(t *testing.T) {
	buf := &Buffer{}
	w := NewWriter(buf, Config{ByteOrder: binary.BigEndian})

	w.WriteUint32(0x12345678)

	// Big-endian: high byte first
	expected := []byte{0x12, 0x34, 0x56, 0x78}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestBufferGrowsWithGap(t *testing.T) {
	buf := &Buffer{}
	if _, err := buf.WriteAt([]byte{0x01}, 5); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}
	expected := []byte{0, 0, 0, 0, 0, 0x01}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}
