package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestReaderReadUint32BigEndian(t *testing.T) {
	r := NewBytesReader([]byte{0x12, 0x34, 0x56, 0x78}, Config{ByteOrder: binary.BigEndian})

	v, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08x", v)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewBytesReader([]byte{0x01, 0x02, 0x03}, Config{})

	if _, err := r.ReadUint32(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if r.Pos() != 0 {
		t.Errorf("failed read should not advance, got pos %d", r.Pos())
	}
}

func TestReaderReadTag(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Tag
	}{
		{
			name:     "long form",
			data:     []byte{0x0E, 0, 0, 0, 0x30, 0, 0, 0},
			expected: Tag{Type: 14, Length: 48},
		},
		{
			name:     "small form",
			data:     []byte{0x01, 0x00, 0x03, 0x00, 'a', 'b', 'c', 0},
			expected: Tag{Type: 1, Length: 3, Small: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewBytesReader(tt.data, Config{})
			tag, err := r.ReadTag()
			if err != nil {
				t.Fatalf("ReadTag failed: %v", err)
			}
			if tag != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, tag)
			}
		})
	}
}

func TestReaderReadTagSmallTooLong(t *testing.T) {
	r := NewBytesReader([]byte{0x01, 0x00, 0x05, 0x00, 0, 0, 0, 0}, Config{})
	if _, err := r.ReadTag(); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned, got %v", err)
	}
}

func TestReaderReadElementPadding(t *testing.T) {
	// miINT8 "hello" padded to 8 bytes, followed by a small element.
	data := []byte{
		0x01, 0, 0, 0, 0x05, 0, 0, 0,
		'h', 'e', 'l', 'l', 'o', 0, 0, 0,
		0x01, 0x00, 0x02, 0x00, 'h', 'i', 0, 0,
	}
	r := NewBytesReader(data, Config{})

	tag, payload, err := r.ReadElement()
	if err != nil {
		t.Fatalf("ReadElement failed: %v", err)
	}
	if tag.Type != 1 || string(payload) != "hello" {
		t.Errorf("unexpected element %+v %q", tag, payload)
	}
	if r.Pos() != 16 {
		t.Errorf("expected pos 16 after padding, got %d", r.Pos())
	}

	tag, payload, err = r.ReadElement()
	if err != nil {
		t.Fatalf("ReadElement failed: %v", err)
	}
	if !tag.Small || string(payload) != "hi" {
		t.Errorf("unexpected small element %+v %q", tag, payload)
	}
	if err := r.ExpectEnd(); err != nil {
		t.Errorf("ExpectEnd: %v", err)
	}
}

func TestReaderReadElementMissingPadding(t *testing.T) {
	data := []byte{
		0x01, 0, 0, 0, 0x05, 0, 0, 0,
		'h', 'e', 'l', 'l', 'o',
	}
	r := NewBytesReader(data, Config{})
	if _, _, err := r.ReadElement(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReaderHugeLengthRejected(t *testing.T) {
	// Declares 4 GiB of payload in a 16-byte stream.
	data := []byte{
		0x09, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	r := NewBytesReader(data, Config{})
	if _, _, err := r.ReadElement(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReaderSection(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	r := NewBytesReader(data, Config{})
	r.Skip(2)

	sub, err := r.Section(4)
	if err != nil {
		t.Fatalf("Section failed: %v", err)
	}
	if r.Pos() != 6 {
		t.Errorf("parent should advance past section, got pos %d", r.Pos())
	}
	if sub.Remaining() != 4 {
		t.Errorf("expected 4 bytes in section, got %d", sub.Remaining())
	}

	if _, err := sub.ReadBytes(5); !errors.Is(err, ErrTruncated) {
		t.Errorf("read past section should fail with ErrTruncated, got %v", err)
	}
	if _, err := sub.ReadBytes(3); err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if err := sub.ExpectEnd(); !errors.Is(err, ErrMisaligned) {
		t.Errorf("expected ErrMisaligned with a byte left over, got %v", err)
	}

	if _, err := r.Section(3); !errors.Is(err, ErrTruncated) {
		t.Errorf("oversized section should fail, got %v", err)
	}
}

func TestReaderAt(t *testing.T) {
	r := NewBytesReader([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, Config{})

	r2 := r.At(4)
	v, err := r2.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v != 0x07060504 {
		t.Errorf("expected 0x07060504, got 0x%08x", v)
	}

	// Original reader should be unaffected
	if r.Pos() != 0 {
		t.Errorf("expected original position 0, got %d", r.Pos())
	}
	b, err := r.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if !bytes.Equal(b, []byte{0x00, 0x01}) {
		t.Errorf("expected [0x00 0x01], got %v", b)
	}
}

func TestReaderAlign(t *testing.T) {
	tests := []struct {
		startPos  int64
		alignment int64
		expected  int64
	}{
		{0, 8, 0},  // Already aligned
		{1, 8, 8},  // Advance to 8
		{7, 8, 8},  // Advance to 8
		{8, 8, 8},  // Already aligned
		{9, 8, 16}, // Advance to 16
		{0, 4, 0},
		{1, 4, 4},
		{3, 4, 4},
		{4, 4, 4},
	}

	for _, tt := range tests {
		r := NewBytesReader(make([]byte, 32), Config{})
		r.Skip(tt.startPos)
		if err := r.Align(tt.alignment); err != nil {
			t.Fatalf("Align failed: %v", err)
		}

		if r.Pos() != tt.expected {
			t.Errorf("Align(%d) from pos %d: expected pos %d, got %d",
				tt.alignment, tt.startPos, tt.expected, r.Pos())
		}
	}
}

func TestReaderAlignRelativeToSection(t *testing.T) {
	r := NewBytesReader(make([]byte, 32), Config{})
	r.Skip(4)
	sub, err := r.Section(16)
	if err != nil {
		t.Fatalf("Section failed: %v", err)
	}
	sub.Skip(3)
	if err := sub.Align(8); err != nil {
		t.Fatalf("Align failed: %v", err)
	}
	if sub.Pos() != 12 {
		t.Errorf("expected pos 12, got %d", sub.Pos())
	}
}
