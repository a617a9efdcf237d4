package tensor

import "fmt"

// Op is an element-wise binary operation.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	default:
		return "unknown"
	}
}

// Policy decides how element-wise operators treat operands of different size.
type Policy int

const (
	// PolicyTruncate combines only the first min(len(lhs), len(rhs)) flat
	// positions and leaves the rest of lhs untouched. Shapes are not checked.
	PolicyTruncate Policy = iota
	// PolicyStrict requires both shapes to be equal once left-padded to the
	// same rank.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyTruncate:
		return "truncate"
	case PolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// Elementwise applies op to copies of lhs and rhs under the given policy. The
// result has the shape of lhs.
func Elementwise[T Number](lhs, rhs *Tensor[T], op Op, policy Policy) (*Tensor[T], error) {
	if lhs == nil || rhs == nil {
		return nil, fmt.Errorf("tensor: %s requires non-nil inputs", op)
	}

	if op < OpAdd || op > OpDiv {
		return nil, fmt.Errorf("tensor: unknown element-wise op %d", int(op))
	}

	if policy == PolicyStrict {
		rank := max(len(lhs.shape), len(rhs.shape))
		if !lhs.shape.LeftPad(rank).Equal(rhs.shape.LeftPad(rank)) {
			return nil, fmt.Errorf("%w: %s of %v and %v", ErrShapeMismatch, op, lhs.shape, rhs.shape)
		}
	}

	out := lhs.Clone()
	apply(out.data, rhs.data, op)

	return out, nil
}

// Add returns lhs + rhs element-wise over the shorter buffer.
func (t *Tensor[T]) Add(rhs *Tensor[T]) *Tensor[T] {
	return t.Clone().AddInPlace(rhs)
}

// AddInPlace adds rhs into t over the shorter buffer and returns t.
func (t *Tensor[T]) AddInPlace(rhs *Tensor[T]) *Tensor[T] {
	return t.applyInPlace(rhs, OpAdd)
}

func (t *Tensor[T]) Sub(rhs *Tensor[T]) *Tensor[T] {
	return t.Clone().SubInPlace(rhs)
}

func (t *Tensor[T]) SubInPlace(rhs *Tensor[T]) *Tensor[T] {
	return t.applyInPlace(rhs, OpSub)
}

// Div divides element-wise. Integer division by zero panics, as in Go.
func (t *Tensor[T]) Div(rhs *Tensor[T]) *Tensor[T] {
	return t.Clone().DivInPlace(rhs)
}

func (t *Tensor[T]) DivInPlace(rhs *Tensor[T]) *Tensor[T] {
	return t.applyInPlace(rhs, OpDiv)
}

// MulElementwise multiplies element-wise (Hadamard product). MatMul is the
// matrix product.
func (t *Tensor[T]) MulElementwise(rhs *Tensor[T]) *Tensor[T] {
	return t.Clone().MulElementwiseInPlace(rhs)
}

func (t *Tensor[T]) MulElementwiseInPlace(rhs *Tensor[T]) *Tensor[T] {
	return t.applyInPlace(rhs, OpMul)
}

func (t *Tensor[T]) applyInPlace(rhs *Tensor[T], op Op) *Tensor[T] {
	if t == nil {
		return nil
	}

	apply(t.data, rhs.RawData(), op)

	return t
}

func apply[T Number](dst, src []T, op Op) {
	n := min(len(dst), len(src))
	dst, src = dst[:n], src[:n]

	switch op {
	case OpAdd:
		for i := range dst {
			dst[i] += src[i]
		}
	case OpSub:
		for i := range dst {
			dst[i] -= src[i]
		}
	case OpMul:
		for i := range dst {
			dst[i] *= src[i]
		}
	case OpDiv:
		for i := range dst {
			dst[i] /= src[i]
		}
	}
}
