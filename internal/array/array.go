// Package array implements the owned, contiguous, row-major tensor and
// its type-erased wrapper AnyArray, the only value kind that moves
// through the operand Stack.
package array

import (
	"tensorvm/internal/dtype"
	"tensorvm/internal/iterate"
	"tensorvm/internal/view"
	"tensorvm/internal/vmerr"
)

// Array is (shape, contiguous buffer) with row-major strides implied.
// Every opcode handler's output is an Array: dense, freshly allocated,
// contiguous.
type Array[T any] struct {
	shape view.Shape
	buf   []T
}

// Fill constructs an Array of the given shape with every element equal to
// value.
func Fill[T any](shape view.Shape, value T) Array[T] {
	buf := make([]T, shape.Elements())
	for i := range buf {
		buf[i] = value
	}
	return Array[T]{shape: shape.Clone(), buf: buf}
}

// FromView materializes a (possibly lazily composed) view into a fresh,
// dense, row-major Array.
func FromView[T any](v view.View[T]) Array[T] {
	return Array[T]{shape: v.Shape().Clone(), buf: iterate.Materialize(v)}
}

// FromBuffer takes ownership of buf as the backing storage for shape.
// len(buf) must equal shape.Elements().
func FromBuffer[T any](shape view.Shape, buf []T) (Array[T], error) {
	if len(buf) != shape.Elements() {
		return Array[T]{}, vmerr.Newf(vmerr.ShapeMismatch, -1, "from_buffer",
			"buffer length %d does not match shape elements %d", len(buf), shape.Elements())
	}
	return Array[T]{shape: shape.Clone(), buf: buf}, nil
}

// Shape returns the array's shape.
func (a Array[T]) Shape() view.Shape { return a.shape }

// Rank returns the array's rank.
func (a Array[T]) Rank() int { return a.shape.Rank() }

// Buffer returns the owned backing buffer in row-major order.
func (a Array[T]) Buffer() []T { return a.buf }

// View returns a cheap row-major view over the array's own buffer, the
// starting point for any view-algebra composition.
func (a Array[T]) View() view.View[T] {
	return view.New(a.buf, a.shape)
}

// Reshape produces a new Array of shape newShape from a's elements in
// row-major order. The total element count must match; a non-matching
// request fails with ReshapeArityMismatch.
func (a Array[T]) Reshape(newShape view.Shape) (Array[T], error) {
	if newShape.Elements() != a.shape.Elements() {
		return Array[T]{}, vmerr.Newf(vmerr.ReshapeArityMismatch, -1, "reshape",
			"source has %d elements, target shape %v has %d", a.shape.Elements(), newShape, newShape.Elements())
	}
	return Array[T]{shape: newShape.Clone(), buf: a.buf}, nil
}

// Clone deep-copies the array's buffer.
func (a Array[T]) Clone() Array[T] {
	buf := make([]T, len(a.buf))
	copy(buf, a.buf)
	return Array[T]{shape: a.shape.Clone(), buf: buf}
}

// AnyArray is the type-erased sum over (DType × Rank) used by the Stack.
// It carries enough tag information to reject an ill-typed downcast
// without reflection: a tag compare followed by a Go type assertion on
// the payload.
type AnyArray struct {
	dtype   dtype.DType
	rank    int
	payload interface{}
}

// Erase wraps a concrete Array[T] for storage on the Stack, stamping it
// with the DType tag the caller asserts T corresponds to.
func Erase[T any](d dtype.DType, a Array[T]) AnyArray {
	return AnyArray{dtype: d, rank: a.Rank(), payload: a}
}

// DType reports the erased array's element type tag.
func (a AnyArray) DType() dtype.DType { return a.dtype }

// Rank reports the erased array's rank tag.
func (a AnyArray) Rank() int { return a.rank }

// Downcast recovers the concrete Array[T], checking both the dtype tag
// and the payload's dynamic type. A mismatch on either returns ok=false;
// the caller raises that as TypeMismatch, a programming error rather than
// a recoverable condition.
func Downcast[T any](a AnyArray, d dtype.DType) (Array[T], bool) {
	if a.dtype != d {
		return Array[T]{}, false
	}
	v, ok := a.payload.(Array[T])
	return v, ok
}

// DowncastRef is Downcast returning a pointer to the recovered Array
// value. The Array header is still copied out of the erased wrapper, but
// since Array's buffer is a slice, both forms share the same backing
// storage, so this exists chiefly for callers that only need to read.
func DowncastRef[T any](a AnyArray, d dtype.DType) (*Array[T], bool) {
	v, ok := Downcast[T](a, d)
	if !ok {
		return nil, false
	}
	return &v, true
}

// CloneTyped returns an AnyArray whose payload is an independent copy of
// the original buffer. The caller supplies T; every call site in this module already
// knows it from the opcode's own dtype dispatch (e.g. ref_T).
func CloneTyped[T any](a AnyArray, d dtype.DType) (AnyArray, bool) {
	src, ok := Downcast[T](a, d)
	if !ok {
		return AnyArray{}, false
	}
	return Erase(d, src.Clone()), true
}
