package tensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape holds the axis extents of a tensor, outermost axis first.
type Shape []int

// NumElements returns the product of the extents.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}

	return n
}

// Validate checks that the shape has at least one axis, that every extent
// is positive and that the element count fits in an int.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: shape has no axes", ErrInvalidShape)
	}

	n := 1
	for i, d := range s {
		if d <= 0 {
			return fmt.Errorf("%w: dimension %d is %d (must be > 0)", ErrInvalidShape, i, d)
		}

		if d > math.MaxInt/n {
			return fmt.Errorf("%w: shape %v too large", ErrInvalidShape, s)
		}

		n *= d
	}

	return nil
}

// Equal reports whether both shapes have the same extents in the same order.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}

	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}

	return true
}

func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// Strides returns row-major strides: stride[i] is the product of the extents
// after axis i.
func (s Shape) Strides() []int {
	if len(s) == 0 {
		return nil
	}

	strides := make([]int, len(s))

	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}

	return strides
}

// ExtendedStrides returns the cumulative suffix products of the shape:
// ext[i] is the number of elements in one block of axis i, i.e. the product of
// the extents from axis i to the last axis. A flat index i sits on the last
// element of such a block when i % ext[j] == ext[j]-1.
func (s Shape) ExtendedStrides() []int {
	if len(s) == 0 {
		return nil
	}

	ext := make([]int, len(s))
	ext[len(s)-1] = s[len(s)-1]

	for i := len(s) - 2; i >= 0; i-- {
		ext[i] = s[i] * ext[i+1]
	}

	return ext
}

// LeftPad returns the shape widened to rank by prepending size-1 axes. A shape
// already at or above rank is returned as a copy.
func (s Shape) LeftPad(rank int) Shape {
	if len(s) >= rank {
		return s.Clone()
	}

	out := make(Shape, rank)

	pad := rank - len(s)
	for i := range pad {
		out[i] = 1
	}

	copy(out[pad:], s)

	return out
}

// String renders the shape as "[d0 d1 ...]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}

	return "[" + strings.Join(parts, " ") + "]"
}
