// Package stack implements the operand stack of type-erased arrays that
// opcode handlers pop operands from and push results onto.
package stack

import (
	"tensorvm/internal/array"
	"tensorvm/internal/vmerr"
)

// Stack is an ordered sequence of array.AnyArray. References obtained via
// Get survive until the referenced slot is popped.
type Stack struct {
	items []array.AnyArray
}

// New returns a Stack pre-seeded with the caller-provided initial
// contents, placed at indices 0..n-1.
func New(initial []array.AnyArray) *Stack {
	return NewWithCapacity(initial, 0)
}

// NewWithCapacity is New with extra capacity reserved beyond the initial
// contents, so a caller that knows its program's peak depth can avoid
// append growth. The reservation is a hint, never a ceiling.
func NewWithCapacity(initial []array.AnyArray, capHint int) *Stack {
	n := len(initial)
	if capHint < n {
		capHint = n
	}
	items := make([]array.AnyArray, n, capHint)
	copy(items, initial)
	return &Stack{items: items}
}

// Push appends a value to the top of the stack.
func (s *Stack) Push(v array.AnyArray) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top value. It fails with StackUnderflow if
// the stack is empty.
func (s *Stack) Pop() (array.AnyArray, error) {
	if len(s.items) == 0 {
		return array.AnyArray{}, vmerr.New(vmerr.StackUnderflow, -1, "pop", "stack is empty")
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, nil
}

// Get borrows the value at absolute index i, counted from the bottom.
func (s *Stack) Get(i int) (array.AnyArray, error) {
	if i < 0 || i >= len(s.items) {
		return array.AnyArray{}, vmerr.Newf(vmerr.StackUnderflow, -1, "ref",
			"stack index %d out of range (depth %d)", i, len(s.items))
	}
	return s.items[i], nil
}

// Len reports the current stack depth.
func (s *Stack) Len() int {
	return len(s.items)
}

// Top returns the whole current stack contents, bottom first. Used by
// the executor to report the program's final result.
func (s *Stack) Top() []array.AnyArray {
	out := make([]array.AnyArray, len(s.items))
	copy(out, s.items)
	return out
}
