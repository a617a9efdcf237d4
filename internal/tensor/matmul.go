package tensor

import (
	"errors"
	"fmt"
)

// MatMul computes the matrix product lhs x rhs. Both shapes are left-padded to
// max(rank(lhs), rank(rhs), 2); anything above rank 2 is rejected with
// ErrUnsupportedRank, and lhs columns must equal rhs rows (ErrShapeMismatch).
// A rank-1 operand is treated as a row vector [1, n].
func MatMul[T Number](lhs, rhs *Tensor[T]) (*Tensor[T], error) {
	if lhs == nil || rhs == nil {
		return nil, errors.New("tensor: matmul requires non-nil inputs")
	}

	if len(lhs.shape) == 0 || len(rhs.shape) == 0 {
		return nil, fmt.Errorf("%w: matmul of %v and %v needs rank >= 1", ErrUnsupportedRank, lhs.shape, rhs.shape)
	}

	rank := max(len(lhs.shape), len(rhs.shape), 2)
	if rank > 2 {
		return nil, fmt.Errorf("%w: matmul of %v and %v needs rank <= 2, got %d", ErrUnsupportedRank, lhs.shape, rhs.shape, rank)
	}

	a := lhs.shape.LeftPad(rank)
	b := rhs.shape.LeftPad(rank)

	rows, inner := a[0], a[1]
	k2, cols := b[0], b[1]

	if inner != k2 {
		return nil, fmt.Errorf("%w: matmul %v x %v (inner dims %d vs %d)", ErrShapeMismatch, lhs.shape, rhs.shape, inner, k2)
	}

	out := make([]T, rows*cols)

	for i := range rows {
		for j := range cols {
			var sum T
			for k := range inner {
				sum += lhs.data[i*inner+k] * rhs.data[j+k*cols]
			}

			out[i*cols+j] = sum
		}
	}

	return newOwned(out, Shape{rows, cols}), nil
}

// Transpose returns a new tensor with the two axes of a matrix swapped.
func (t *Tensor[T]) Transpose() (*Tensor[T], error) {
	if t == nil {
		return nil, errors.New("tensor: transpose on nil tensor")
	}

	if len(t.shape) != 2 {
		return nil, fmt.Errorf("%w: transpose needs rank 2, got shape %v", ErrUnsupportedRank, t.shape)
	}

	rows, cols := t.shape[0], t.shape[1]
	out := make([]T, len(t.data))

	for i := range rows {
		for j := range cols {
			out[j*rows+i] = t.data[i*cols+j]
		}
	}

	return newOwned(out, Shape{cols, rows}), nil
}
