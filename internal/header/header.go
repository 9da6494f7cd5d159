// Package header handles the fixed 128-byte header of a Level 5 MAT-file.
//
// The header is the entry point of every file: a descriptive text field,
// an optional subsystem data offset, the format version and an endian
// indicator from which the byte order of the rest of the file is derived.
package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

/*
Header Layout:
Offset  Size  Description
0       116   Descriptive text, space padded
116     8     Subsystem data offset (zero or all spaces when unused)
124     2     Version (0x0100)
126     2     Endian indicator: the characters 'M' 'I' written as a
              16-bit value, so "IM" on disk means little-endian and
              "MI" means big-endian
*/

const (
	// Size is the total size of the header in bytes.
	Size = 128

	// TextSize is the size of the descriptive text field.
	TextSize = 116

	// Version5 is the only version word a Level 5 file may carry.
	Version5 uint16 = 0x0100

	// version73 marks an HDF5-based MAT-file.
	version73 uint16 = 0x0200

	endianIndicator uint16 = 'M'<<8 | 'I'
)

// ErrMismatch is returned when the header signature or version is not recognized.
var ErrMismatch = errors.New("not a Level 5 MAT-file")

// Header is the decoded file header.
type Header struct {
	// Text is the descriptive text with trailing padding removed.
	Text string

	// SubsysOffset is the subsystem data offset, 0 when unused.
	SubsysOffset uint64

	Version uint16

	ByteOrder binary.ByteOrder
}

// New returns a little-endian header carrying text.
func New(text string) *Header {
	return &Header{
		Text:      text,
		Version:   Version5,
		ByteOrder: binary.LittleEndian,
	}
}

// DefaultText returns the conventional descriptive text for a file
// created on platform at t.
func DefaultText(platform string, t time.Time) string {
	return fmt.Sprintf("MATLAB 5.0 MAT-file, Platform: %s, Created on: %s",
		platform, t.Format("Mon Jan _2 15:04:05 2006"))
}

// Read parses the header at offset 0 of r.
func Read(r io.ReaderAt) (*Header, error) {
	buf := make([]byte, Size)
	n, err := r.ReadAt(buf, 0)
	if n < Size {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: file has %d bytes, header needs %d", ErrMismatch, n, Size)
	}
	return Parse(buf)
}

// Parse decodes a header from its 128 raw bytes.
func Parse(buf []byte) (*Header, error) {
	if len(buf) < Size {
		return nil, fmt.Errorf("%w: header has %d bytes, need %d", ErrMismatch, len(buf), Size)
	}

	var order binary.ByteOrder
	switch string(buf[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: endian indicator %q", ErrMismatch, buf[126:128])
	}

	h := &Header{
		Text:      strings.TrimRight(string(buf[:TextSize]), " \x00"),
		Version:   order.Uint16(buf[124:126]),
		ByteOrder: order,
	}

	switch h.Version {
	case Version5:
	case version73:
		return nil, fmt.Errorf("%w: version 7.3 files are HDF5 containers", ErrMismatch)
	default:
		return nil, fmt.Errorf("%w: version 0x%04x", ErrMismatch, h.Version)
	}

	subsys := buf[TextSize:124]
	if !bytes.Equal(subsys, []byte("        ")) {
		h.SubsysOffset = order.Uint64(subsys)
	}
	return h, nil
}

// Bytes encodes the header into its 128-byte form. Text longer than the
// text field is truncated.
func (h *Header) Bytes() []byte {
	order := h.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	version := h.Version
	if version == 0 {
		version = Version5
	}

	buf := make([]byte, Size)
	text := h.Text
	if len(text) > TextSize {
		text = text[:TextSize]
	}
	copy(buf, text)
	for i := len(text); i < TextSize; i++ {
		buf[i] = ' '
	}
	order.PutUint64(buf[TextSize:], h.SubsysOffset)
	order.PutUint16(buf[124:], version)
	order.PutUint16(buf[126:], endianIndicator)
	return buf
}

// Write writes the encoded header to w.
func (h *Header) Write(w io.Writer) error {
	_, err := w.Write(h.Bytes())
	return err
}
