package tensor

import (
	"errors"
	"fmt"
	"slices"
)

// Index selects entry i along axis 0. A rank-1 tensor yields a rank-1 tensor
// of length 1 holding the element; higher ranks yield the sub-tensor with the
// leading axis removed. The selected block is copied.
func (t *Tensor[T]) Index(i int) (*Tensor[T], error) {
	if t == nil {
		return nil, errors.New("tensor: index on nil tensor")
	}

	if len(t.shape) == 0 {
		return nil, fmt.Errorf("%w: index on a tensor with no axes", ErrUnsupportedRank)
	}

	if i < 0 || i >= t.shape[0] {
		return nil, fmt.Errorf("%w: index %d for axis 0 of size %d", ErrIndexOutOfRange, i, t.shape[0])
	}

	if len(t.shape) == 1 {
		return newOwned([]T{t.data[i]}, Shape{1}), nil
	}

	rest := t.shape[1:].Clone()
	size := t.shape.Strides()[0]
	start := i * size

	return newOwned(slices.Clone(t.data[start:start+size]), rest), nil
}
