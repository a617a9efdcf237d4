// Package tensor implements a small dense N-dimensional array.
//
// A Tensor owns a contiguous row-major buffer and its Shape. Constructors
// validate that the buffer length equals the product of the extents, and every
// operation returns a fresh tensor unless its name ends in InPlace.
//
// Element-wise operators (Add, Sub, Div, MulElementwise) combine the flat
// buffers position by position over the shorter of the two; Elementwise offers
// a strict policy that requires equal shapes after left-padding instead.
// MatMul and Transpose work on matrices only, and Index selects along axis 0.
package tensor
