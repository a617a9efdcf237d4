package tensor

import (
	"fmt"
	"strings"
)

const (
	fmtShapeHeader = "Shape = "
	fmtSep         = ", "
	fmtRowEnd      = "\n"
)

// String renders the tensor for humans: a "Shape = d0, d1, ..., " header line
// followed by the values in buffer order, one innermost row per line, with a
// blank line between slabs of every axis except the first and the last.
// Output of rank >= 2 carries no trailing newline; rank 1 ends with one.
func (t *Tensor[T]) String() string {
	if t == nil {
		return "<nil>"
	}

	// Zero value: no axes, no values.
	if len(t.shape) == 0 {
		return fmtShapeHeader + fmtRowEnd
	}

	var b strings.Builder

	b.WriteString(fmtShapeHeader)

	for _, d := range t.shape {
		fmt.Fprintf(&b, "%d%s", d, fmtSep)
	}

	b.WriteString(fmtRowEnd)

	ext := t.shape.ExtendedStrides()
	last := len(ext) - 1

	for i, v := range t.data {
		fmt.Fprintf(&b, "%v", v)

		if i%ext[last] != ext[last]-1 {
			b.WriteString(fmtSep)
			continue
		}

		b.WriteString(fmtRowEnd)

		for j := 1; j < last; j++ {
			if i%ext[j] == ext[j]-1 {
				b.WriteString(fmtRowEnd)
			}
		}
	}

	out := b.String()

	return out[:len(out)-len(t.shape)+1]
}
