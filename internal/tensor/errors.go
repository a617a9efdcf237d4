package tensor

import "errors"

// Sentinel errors returned by the tensor package. Callers match them with
// errors.Is; the package always wraps them with operand context.
var (
	// ErrShapeMismatch is returned when operand shapes are incompatible, e.g. the
	// inner dimensions of a matrix product disagree.
	ErrShapeMismatch = errors.New("tensor: shape mismatch")

	// ErrUnsupportedRank is returned for operations requested on a rank they do
	// not implement (matrix product above rank 2, transpose of non-matrices).
	ErrUnsupportedRank = errors.New("tensor: unsupported rank")

	// ErrIndexOutOfRange is returned by indexers given an index outside the axis.
	ErrIndexOutOfRange = errors.New("tensor: index out of range")

	// ErrDataShapeInconsistency is returned when a buffer length does not equal
	// the product of the shape extents.
	ErrDataShapeInconsistency = errors.New("tensor: data length does not match shape")

	// ErrInvalidShape is returned for an empty shape or a non-positive extent.
	ErrInvalidShape = errors.New("tensor: invalid shape")
)
