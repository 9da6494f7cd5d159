package mat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/robert-malhotra/go-mat/internal/deflate"
	"github.com/robert-malhotra/go-mat/internal/dtype"
	"github.com/robert-malhotra/go-mat/internal/header"
)

// Writer writes variables to a MAT-file in call order.
type Writer struct {
	file   *os.File // nil when the caller owns the destination
	out    *bufio.Writer
	enc    *encoder
	zip    *deflate.Deflate // nil unless compression is enabled
	logger *slog.Logger
	seen   map[string]bool
	err    error
	closed bool
}

// Create creates or truncates the file at path and writes the header.
func Create(path string, opts ...Option) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	w, err := NewWriter(f, opts...)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewWriter writes the header to w and returns a Writer for the variables
// that follow. The caller keeps ownership of w; Close only flushes.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	o := buildOptions(opts)

	h := header.New(o.headerText())
	h.ByteOrder = o.order
	out := bufio.NewWriter(w)
	if err := h.Write(out); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	mw := &Writer{
		out:    out,
		enc:    &encoder{order: o.order, maxDepth: o.maxDepth},
		logger: o.logger,
		seen:   make(map[string]bool),
	}
	if o.compress {
		mw.zip = deflate.New(o.level, 0)
	}
	return mw, nil
}

// Write appends one variable. Values that cannot be encoded leave the
// file unchanged; an I/O failure is permanent.
func (w *Writer) Write(name string, v Value) error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	if err := checkName(name); err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("%w: variable %q is nil", ErrUnsupportedType, name)
	}
	if w.seen[name] {
		return fmt.Errorf("%w: variable %q", ErrDuplicateIdentifier, name)
	}

	elem, err := w.enc.encode(name, v)
	if err != nil {
		return fmt.Errorf("encoding variable %q: %w", name, err)
	}
	stored := len(elem)
	if w.zip != nil {
		if elem, err = w.compress(elem); err != nil {
			return fmt.Errorf("compressing variable %q: %w", name, err)
		}
	}

	if _, err := w.out.Write(elem); err != nil {
		w.err = fmt.Errorf("writing variable %q: %w", name, err)
		return w.err
	}
	w.seen[name] = true
	w.logger.Debug("wrote variable",
		"name", name, "kind", v.Kind().String(), "dims", v.Dims(),
		"bytes", stored, "stored", len(elem))
	return nil
}

// compress wraps a complete element in a miCOMPRESSED element. The
// compressed stream is not padded.
func (w *Writer) compress(elem []byte) ([]byte, error) {
	z, err := w.zip.Encode(elem)
	if err != nil {
		return nil, err
	}
	if uint64(len(z)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: compressed element of %d bytes", ErrSizeMismatch, len(z))
	}
	out := make([]byte, 8+len(z))
	order := w.enc.order
	order.PutUint32(out, uint32(dtype.Compressed))
	order.PutUint32(out[4:], uint32(len(z)))
	copy(out[8:], z)
	return out, nil
}

// Close flushes buffered data and closes the file if the Writer opened it.
// Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if ferr := w.out.Flush(); ferr != nil {
		err = fmt.Errorf("flushing: %w", ferr)
	}
	if w.file != nil {
		if serr := w.file.Sync(); serr != nil && err == nil {
			err = fmt.Errorf("syncing: %w", serr)
		}
		if cerr := w.file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}
	return err
}

// WriteFile writes vars to path in their stored order. A nil vars writes a
// file holding only the header. On failure the partially written file is
// removed.
func WriteFile(path string, vars *Vars, opts ...Option) error {
	w, err := Create(path, opts...)
	if err != nil {
		return err
	}
	if vars != nil {
		for name, v := range vars.All() {
			if err = w.Write(name, v); err != nil {
				break
			}
		}
	}
	err = errors.Join(err, w.Close())
	if err != nil {
		os.Remove(path)
	}
	return err
}
