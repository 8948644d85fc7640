// Package view implements the non-owning, strided array-view algebra:
// sub-range slicing, axis reversal, stride multiplication, and broadcast
// expansion, composed lazily without touching the underlying buffer until
// a caller materializes the result.
package view

import "tensorvm/internal/vmerr"

// Shape is a tuple of rank non-negative extents. A zero extent in any
// dimension makes the view empty.
type Shape []int

// Rank is the number of axes.
func (s Shape) Rank() int { return len(s) }

// Elements is the product of extents (the logical element count).
func (s Shape) Elements() int {
	n := 1
	for _, e := range s {
		n *= e
	}
	return n
}

// Clone returns an independent copy of s.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

func (s Shape) equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Strides is a tuple of rank signed, element-unit displacements. Zero
// (broadcast) and negative (flip) strides are both legal.
type Strides []int

func rowMajorStrides(shape Shape) Strides {
	st := make(Strides, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

// Range is a resolved [Start, End) bound on one axis, using the
// Python-like negative-index convention.
type Range struct {
	Start int
	End   int
}

// View is the non-owning (shape, strides, offset) descriptor over a
// borrowed element buffer. The zero value is not usable;
// construct with New.
type View[T any] struct {
	buf     []T
	offset  int
	shape   Shape
	strides Strides
}

// New builds a row-major view over buf with the given shape. len(buf) must
// equal shape.Elements() (the caller owns buf; View only borrows it).
func New[T any](buf []T, shape Shape) View[T] {
	return View[T]{
		buf:     buf,
		offset:  0,
		shape:   shape.Clone(),
		strides: rowMajorStrides(shape),
	}
}

// FromStrided builds a view with explicit strides and offset, used when
// composing transforms that no longer imply row-major layout.
func FromStrided[T any](buf []T, offset int, shape Shape, strides Strides) View[T] {
	return View[T]{buf: buf, offset: offset, shape: shape.Clone(), strides: append(Strides(nil), strides...)}
}

// Shape returns the view's shape.
func (v View[T]) Shape() Shape { return v.shape }

// Strides returns the view's strides.
func (v View[T]) Strides() Strides { return v.strides }

// Rank returns the view's rank.
func (v View[T]) Rank() int { return v.shape.Rank() }

// Offset returns the view's element offset into its borrowed buffer.
func (v View[T]) Offset() int { return v.offset }

// Buffer returns the borrowed buffer the view reads from. Callers must
// treat it as read-only.
func (v View[T]) Buffer() []T { return v.buf }

// At reads the logical position pos. Out-of-bounds pos is a contract
// violation; the runtime does not guard against it on the hot path.
func (v View[T]) At(pos []int) T {
	idx := v.offset
	for i, p := range pos {
		idx += v.strides[i] * p
	}
	return v.buf[idx]
}

// Sub implements the `view(ranges)` sub-range operation.
func (v View[T]) Sub(ranges []Range) (View[T], error) {
	if len(ranges) != v.Rank() {
		return View[T]{}, vmerr.Newf(vmerr.RangeError, -1, "view",
			"range count %d does not match rank %d", len(ranges), v.Rank())
	}
	newShape := make(Shape, v.Rank())
	newOffset := v.offset
	for i, rg := range ranges {
		extent := v.shape[i]
		start, end := rg.Start, rg.End
		if start < 0 {
			start += extent
		}
		if end < 0 {
			end += extent
		}
		if start > extent {
			start = extent
		}
		if end > extent {
			end = extent
		}
		if start < 0 {
			start = 0
		}
		if end < 0 {
			end = 0
		}
		if start > end {
			return View[T]{}, vmerr.Newf(vmerr.RangeError, -1, "view",
				"axis %d: start %d exceeds end %d", i, start, end)
		}
		newShape[i] = end - start
		newOffset += v.strides[i] * start
	}
	return View[T]{buf: v.buf, offset: newOffset, shape: newShape, strides: v.strides.Clone()}, nil
}

// Clone returns an independent copy of strides.
func (s Strides) Clone() Strides {
	out := make(Strides, len(s))
	copy(out, s)
	return out
}

// Flip implements axis reversal: for each axis where mask[i] is true and
// shape[i] > 0, the offset advances to the last element along that axis
// and the stride negates. Flipping an empty axis is a no-op.
func (v View[T]) Flip(mask []bool) (View[T], error) {
	if len(mask) != v.Rank() {
		return View[T]{}, vmerr.Newf(vmerr.RangeError, -1, "flip",
			"mask length %d does not match rank %d", len(mask), v.Rank())
	}
	newOffset := v.offset
	newStrides := v.strides.Clone()
	for i, flip := range mask {
		if !flip || v.shape[i] == 0 {
			continue
		}
		newOffset += newStrides[i] * (v.shape[i] - 1)
		newStrides[i] = -newStrides[i]
	}
	return View[T]{buf: v.buf, offset: newOffset, shape: v.shape.Clone(), strides: newStrides}, nil
}

// Expand implements broadcast: any axis whose current extent is 1 may be
// expanded to newShape[i] by setting its stride to zero; any other axis
// must already match newShape[i] exactly.
func (v View[T]) Expand(newShape Shape) (View[T], error) {
	if len(newShape) != v.Rank() {
		return View[T]{}, vmerr.Newf(vmerr.ShapeMismatch, -1, "expand",
			"target rank %d does not match rank %d", len(newShape), v.Rank())
	}
	outShape := make(Shape, v.Rank())
	outStrides := v.strides.Clone()
	for i, want := range newShape {
		if v.shape[i] == 1 {
			outShape[i] = want
			outStrides[i] = 0
			continue
		}
		if v.shape[i] != want {
			return View[T]{}, vmerr.Newf(vmerr.ShapeMismatch, -1, "expand",
				"axis %d: cannot expand extent %d to %d", i, v.shape[i], want)
		}
		outShape[i] = v.shape[i]
	}
	return View[T]{buf: v.buf, offset: v.offset, shape: outShape, strides: outStrides}, nil
}

// Step implements strided sub-sampling: each by[i] must be > 0; the new
// shape is ceil(shape[i]/by[i]) and the new stride is strides[i]*by[i].
func (v View[T]) Step(by []int) (View[T], error) {
	if len(by) != v.Rank() {
		return View[T]{}, vmerr.Newf(vmerr.RangeError, -1, "step",
			"step count %d does not match rank %d", len(by), v.Rank())
	}
	outShape := make(Shape, v.Rank())
	outStrides := make(Strides, v.Rank())
	for i, b := range by {
		if b <= 0 {
			return View[T]{}, vmerr.Newf(vmerr.RangeError, -1, "step",
				"axis %d: step %d must be > 0", i, b)
		}
		outShape[i] = (v.shape[i] + b - 1) / b
		outStrides[i] = v.strides[i] * b
	}
	return View[T]{buf: v.buf, offset: v.offset, shape: outShape, strides: outStrides}, nil
}

// SameShape reports whether two shapes are element-for-element equal,
// the precondition for element-wise binary opcodes.
func SameShape(a, b Shape) bool {
	return a.equal(b)
}
