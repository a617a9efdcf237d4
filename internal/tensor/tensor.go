package tensor

import (
	"fmt"
	"slices"
)

// Number is the set of element types a Tensor can hold. Unsigned integers are
// left out: a negative intermediate has no defined conversion to them.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Tensor is a dense, row-major N-dimensional array. The buffer always holds
// exactly Shape().NumElements() values and is never shared between tensors.
type Tensor[T Number] struct {
	shape Shape
	data  []T
}

// New creates a tensor from data and shape. Both slices are copied.
func New[T Number](data []T, shape Shape) (*Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	if total := shape.NumElements(); len(data) != total {
		return nil, fmt.Errorf("%w: %d values for shape %v (%d elements)", ErrDataShapeInconsistency, len(data), shape, total)
	}

	return &Tensor[T]{shape: shape.Clone(), data: slices.Clone(data)}, nil
}

// newOwned creates a Tensor taking ownership of data and shape without
// copying. len(data) must equal shape.NumElements(); this is not validated.
func newOwned[T Number](data []T, shape Shape) *Tensor[T] {
	return &Tensor[T]{shape: shape, data: data}
}

// Zeros creates a zero-filled tensor.
func Zeros[T Number](shape Shape) (*Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	return newOwned(make([]T, shape.NumElements()), shape.Clone()), nil
}

// Full creates a tensor with every element set to value.
func Full[T Number](shape Shape, value T) (*Tensor[T], error) {
	t, err := Zeros[T](shape)
	if err != nil {
		return nil, err
	}

	for i := range t.data {
		t.data[i] = value
	}

	return t, nil
}

func (t *Tensor[T]) Shape() Shape {
	if t == nil {
		return nil
	}

	return t.shape.Clone()
}

// Data returns a copy of the underlying buffer.
func (t *Tensor[T]) Data() []T {
	if t == nil {
		return nil
	}

	return slices.Clone(t.data)
}

// RawData returns the underlying buffer.
// Callers must treat it as read-only.
func (t *Tensor[T]) RawData() []T {
	if t == nil {
		return nil
	}

	return t.data
}

func (t *Tensor[T]) ElemCount() int {
	if t == nil {
		return 0
	}

	return len(t.data)
}

func (t *Tensor[T]) Rank() int {
	if t == nil {
		return 0
	}

	return len(t.shape)
}

// Clone returns a deep copy.
func (t *Tensor[T]) Clone() *Tensor[T] {
	if t == nil {
		return nil
	}

	return newOwned(slices.Clone(t.data), t.shape.Clone())
}

// At returns the element at the given coordinates, one per axis.
func (t *Tensor[T]) At(indices ...int) (T, error) {
	var zero T

	off, err := t.offset(indices)
	if err != nil {
		return zero, fmt.Errorf("tensor: at: %w", err)
	}

	return t.data[off], nil
}

// Set stores value at the given coordinates, one per axis.
func (t *Tensor[T]) Set(value T, indices ...int) error {
	off, err := t.offset(indices)
	if err != nil {
		return fmt.Errorf("tensor: set: %w", err)
	}

	t.data[off] = value

	return nil
}

func (t *Tensor[T]) offset(indices []int) (int, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: nil tensor", ErrIndexOutOfRange)
	}

	if len(indices) != len(t.shape) {
		return 0, fmt.Errorf("%w: got %d indices for rank %d", ErrIndexOutOfRange, len(indices), len(t.shape))
	}

	strides := t.shape.Strides()

	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			return 0, fmt.Errorf("%w: index %d on axis %d of size %d", ErrIndexOutOfRange, idx, i, t.shape[i])
		}

		off += idx * strides[i]
	}

	return off, nil
}

// Equal reports whether both tensors have the same shape and the same
// elements. Elements compare with ==, so NaN never equals NaN.
func (t *Tensor[T]) Equal(other *Tensor[T]) bool {
	if t == nil || other == nil {
		return t == other
	}

	return t.shape.Equal(other.shape) && slices.Equal(t.data, other.data)
}

func (t *Tensor[T]) NotEqual(other *Tensor[T]) bool {
	return !t.Equal(other)
}
