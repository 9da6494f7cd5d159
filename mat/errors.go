// Package mat reads and writes Level 5 MAT-files.
package mat

import (
	"errors"

	binpkg "github.com/robert-malhotra/go-mat/internal/binary"
	"github.com/robert-malhotra/go-mat/internal/deflate"
	"github.com/robert-malhotra/go-mat/internal/dtype"
	"github.com/robert-malhotra/go-mat/internal/header"
)

// Common errors. The lower-level sentinels are re-exported so callers can
// match them with errors.Is without importing internal packages.
var (
	ErrTruncatedStream     = binpkg.ErrTruncated
	ErrMisalignedElement   = binpkg.ErrMisaligned
	ErrSizeMismatch        = dtype.ErrSizeMismatch
	ErrUnsupportedType     = dtype.ErrUnsupportedType
	ErrHeaderMismatch      = header.ErrMismatch
	ErrElementTooLarge     = deflate.ErrTooLarge
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrInvalidName         = errors.New("invalid name")
	ErrTooDeep             = errors.New("maximum nesting depth exceeded")
	ErrClosed              = errors.New("file is closed")
)

// DefaultMaxDepth is the default limit on nested struct and cell levels.
const DefaultMaxDepth = 64

// DefaultMaxElementSize is the default limit on the inflated size of a
// compressed element.
const DefaultMaxElementSize = 1 << 31
