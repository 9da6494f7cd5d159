package mat

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	binpkg "github.com/robert-malhotra/go-mat/internal/binary"
	"github.com/robert-malhotra/go-mat/internal/deflate"
	"github.com/robert-malhotra/go-mat/internal/header"
)

// Header is the decoded 128-byte file header.
type Header = header.Header

// File is a MAT-file opened for reading. Variables are decoded one at a
// time by Next, or all at once by ReadAll.
type File struct {
	path   string
	file   *os.File // nil when the caller owns the reader
	reader *binpkg.Reader
	header *header.Header
	dec    *decoder
	logger *slog.Logger
	seen   map[string]bool
	err    error
	closed bool
}

// Variable is one decoded top-level variable.
type Variable struct {
	Name  string
	Value Value

	// Offset and Size locate the stored element, tag included.
	Offset int64
	Size   int64

	// Compressed is set when the variable was stored in a compressed element.
	Compressed bool
}

// Open opens a MAT-file for reading.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	mf, err := NewReader(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	mf.path = path
	mf.file = f
	return mf, nil
}

// NewReader reads a MAT-file from the first size bytes of r. The caller
// keeps ownership of r.
func NewReader(r io.ReaderAt, size int64, opts ...Option) (*File, error) {
	o := buildOptions(opts)

	h, err := header.Read(r)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	reader := binpkg.NewReader(r, size, binpkg.Config{ByteOrder: h.ByteOrder}).At(header.Size)

	o.logger.Debug("opened MAT-file", "text", h.Text, "byte_order", h.ByteOrder.String(), "size", size)
	return &File{
		reader: reader,
		header: h,
		dec: &decoder{
			order:    h.ByteOrder,
			inflate:  deflate.New(deflate.DefaultLevel, o.maxElementSize),
			maxDepth: o.maxDepth,
			logger:   o.logger,
		},
		logger: o.logger,
		seen:   make(map[string]bool),
	}, nil
}

// ReadFile reads every variable of the file at path.
func ReadFile(path string, opts ...Option) (*Vars, error) {
	f, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadAll()
}

// Header returns the file header.
func (f *File) Header() Header {
	return *f.header
}

// Path returns the file path, empty for files read through NewReader.
func (f *File) Path() string {
	return f.path
}

// Next decodes the next variable. It returns io.EOF after the last one.
// Once Next has failed, it keeps returning the same error.
func (f *File) Next() (*Variable, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if f.err != nil {
		return nil, f.err
	}
	v, err := f.next()
	if err != nil {
		f.err = err
		return nil, err
	}
	return v, nil
}

func (f *File) next() (*Variable, error) {
	for {
		start := f.reader.Pos()
		if f.reader.Remaining() == 0 {
			return nil, io.EOF
		}
		if f.header.SubsysOffset != 0 && uint64(start) == f.header.SubsysOffset {
			if err := f.skipSubsystem(); err != nil {
				return nil, fmt.Errorf("subsystem data: %w", err)
			}
			continue
		}

		name, v, compressed, err := f.dec.readTopLevel(f.reader)
		if err != nil {
			if name != "" {
				return nil, fmt.Errorf("reading variable %q: %w", name, err)
			}
			return nil, fmt.Errorf("reading element at offset %d: %w", start, err)
		}
		size := f.reader.Pos() - start
		if v == nil {
			f.logger.Debug("skipped empty element", "offset", start)
			continue
		}
		if f.seen[name] {
			return nil, fmt.Errorf("%w: variable %q at offset %d", ErrDuplicateIdentifier, name, start)
		}
		f.seen[name] = true

		f.logger.Debug("decoded variable",
			"name", name, "kind", v.Kind().String(), "dims", v.Dims(),
			"offset", start, "size", size, "compressed", compressed)
		return &Variable{Name: name, Value: v, Offset: start, Size: size, Compressed: compressed}, nil
	}
}

// skipSubsystem steps over the element holding subsystem data, which
// carries class definitions this package does not decode.
func (f *File) skipSubsystem() error {
	tag, err := f.reader.ReadTag()
	if err != nil {
		return err
	}
	if tag.Small {
		return f.reader.Skip(4)
	}
	if err := f.reader.Skip(int64(tag.Length)); err != nil {
		return err
	}
	f.logger.Debug("skipped subsystem data", "bytes", tag.Length)
	return f.reader.Align(binpkg.Alignment)
}

// ReadAll decodes every remaining variable. On error no variables are
// returned.
func (f *File) ReadAll() (*Vars, error) {
	vars := NewVars()
	for {
		v, err := f.Next()
		if errors.Is(err, io.EOF) {
			return vars, nil
		}
		if err != nil {
			return nil, err
		}
		if err := vars.Add(v.Name, v.Value); err != nil {
			return nil, err
		}
	}
}

// Close releases the file. Closing twice is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}
