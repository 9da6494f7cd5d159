// Package deflate implements the zlib wrapping of miCOMPRESSED elements.
//
// A compressed element holds one complete data element (tag, payload and
// padding) run through zlib. Decompression is capped so that a small
// malicious stream cannot expand into unbounded memory.
package deflate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DefaultLevel is the compression level used when none is configured.
const DefaultLevel = zlib.DefaultCompression

// ErrTooLarge is returned when inflated data exceeds the configured limit.
var ErrTooLarge = errors.New("decompressed element exceeds size limit")

// Deflate compresses and decompresses element bytes.
type Deflate struct {
	level int
	limit int64
}

// New creates a codec with the given compression level (0-9, or -1 for
// the zlib default) and decompression limit in bytes (0 means no limit).
func New(level int, limit int64) *Deflate {
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		level = DefaultLevel
	}
	return &Deflate{level: level, limit: limit}
}

// Decode inflates a zlib stream.
func (d *Deflate) Decode(input []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer r.Close()

	var src io.Reader = r
	if d.limit > 0 {
		src = io.LimitReader(r, d.limit+1)
	}
	output, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	if d.limit > 0 && int64(len(output)) > d.limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, d.limit)
	}
	return output, nil
}

// Encode deflates data into a zlib stream.
func (d *Deflate) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, d.level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}
