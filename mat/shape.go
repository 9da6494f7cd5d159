package mat

import (
	"fmt"
	"math"
)

// maxDim is the largest dimension the format can store (dimensions are int32).
const maxDim = math.MaxInt32

// numel returns the number of elements of shape.
func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// checkedNumel returns the element count of shape, failing on negative
// dimensions or overflow.
func checkedNumel(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 || d > maxDim {
			return 0, fmt.Errorf("%w: dimension %d out of range", ErrSizeMismatch, d)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: shape %v overflows", ErrSizeMismatch, shape)
		}
		n *= d
	}
	return n, nil
}

// offset returns the column-major linear index of idx within shape.
// Missing trailing indices are treated as zero.
func offset(shape, idx []int) int {
	k, stride := 0, 1
	for i, d := range shape {
		if i < len(idx) {
			if idx[i] < 0 || idx[i] >= d {
				panic(fmt.Sprintf("mat: index %v out of range for shape %v", idx, shape))
			}
			k += idx[i] * stride
		}
		stride *= d
	}
	if len(idx) > len(shape) {
		panic(fmt.Sprintf("mat: index %v has more dimensions than shape %v", idx, shape))
	}
	return k
}

// transpose converts a rows×cols matrix from row-major to column-major
// order. Column-major data of a rows×cols matrix is the row-major data of
// its cols×rows transpose, so transpose(data, cols, rows) converts back.
// This is the only place the two layouts meet.
func transpose[T any](data []T, rows, cols int) []T {
	out := make([]T, len(data))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j*rows+i] = data[i*cols+j]
		}
	}
	return out
}

// shapeFor normalizes the shape of a value holding n elements: shapes of
// rank below 2 become a 1×n row, and the element count must match.
func shapeFor(shape []int, n int) ([]int, error) {
	switch {
	case len(shape) == 0:
		return []int{1, n}, nil
	case len(shape) == 1:
		if shape[0] != n {
			return nil, fmt.Errorf("%w: shape %v holds %d elements", ErrSizeMismatch, shape, n)
		}
		return []int{1, n}, nil
	}
	count, err := checkedNumel(shape)
	if err != nil {
		return nil, err
	}
	if count != n {
		return nil, fmt.Errorf("%w: shape %v does not hold %d elements", ErrSizeMismatch, shape, n)
	}
	return shape, nil
}

func cloneShape(shape []int) []int {
	return append([]int(nil), shape...)
}
