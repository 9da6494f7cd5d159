package mat

import (
	"encoding/binary"
	"log/slog"
	"runtime"
	"time"

	"github.com/robert-malhotra/go-mat/internal/deflate"
	"github.com/robert-malhotra/go-mat/internal/header"
)

// Option configures reading and writing.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	compress       bool
	level          int
	maxDepth       int
	maxElementSize int64
	description    string
	now            func() time.Time
	order          binary.ByteOrder
}

func defaultOptions() *options {
	return &options{
		logger:         slog.New(slog.DiscardHandler),
		level:          deflate.DefaultLevel,
		maxDepth:       DefaultMaxDepth,
		maxElementSize: DefaultMaxElementSize,
		now:            time.Now,
		order:          binary.LittleEndian,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// headerText returns the descriptive text written into new files.
func (o *options) headerText() string {
	if o.description != "" {
		return o.description
	}
	return header.DefaultText(runtime.GOOS, o.now())
}

// WithLogger sets the logger that receives debug output. A nil logger
// keeps the default, which discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCompression makes the writer wrap every variable in a compressed
// element at the given zlib level (0-9, or -1 for the default level).
func WithCompression(level int) Option {
	return func(o *options) {
		o.compress = true
		o.level = level
	}
}

// WithMaxDepth sets how deeply cells and structs may nest.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithMaxElementSize limits the inflated size of a compressed element.
func WithMaxElementSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxElementSize = n
		}
	}
}

// WithDescription replaces the descriptive header text of new files.
// Text longer than 116 bytes is truncated.
func WithDescription(text string) Option {
	return func(o *options) {
		o.description = text
	}
}

// WithClock sets the time source used for the creation date in the
// default header text.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithByteOrder sets the byte order of new files. Readers always use the
// order recorded in the file header.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.order = order
		}
	}
}
