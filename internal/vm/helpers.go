package vm

import (
	"tensorvm/internal/array"
	"tensorvm/internal/dtype"
	"tensorvm/internal/reader"
	"tensorvm/internal/vmerr"
)

// popTyped pops the stack's top value and downcasts it to Array[T],
// failing with TypeMismatch if either the dtype tag or the payload's
// dynamic type disagree with d/T.
func popTyped[T any](ex *Executor, d dtype.DType, mnemonic string) (array.Array[T], error) {
	v, err := ex.stack.Pop()
	if err != nil {
		return array.Array[T]{}, err
	}
	a, ok := array.Downcast[T](v, d)
	if !ok {
		return array.Array[T]{}, vmerr.Newf(vmerr.TypeMismatch, -1, mnemonic,
			"expected %s array, got dtype %s", d, v.DType())
	}
	return a, nil
}

// requireRank fails with ShapeMismatch when a popped array's rank does
// not match the opcode's own rank: the handler body is rank-generic Go
// code but the encoded opcode still pins a rank, so a mismatched operand
// is a caller error.
func requireRank(mnemonic string, rank int, shapes ...interface {
	Rank() int
}) error {
	for _, s := range shapes {
		if s.Rank() != rank {
			return vmerr.Newf(vmerr.ShapeMismatch, -1, mnemonic,
				"expected rank %d operand, got rank %d", rank, s.Rank())
		}
	}
	return nil
}

// readScalar reads one little-endian scalar literal matching d's native
// representation and returns it boxed as any; callers assert
// it back to the concrete T they registered the handler with, which is
// always the Go type corresponding to d.
func readScalar(r *reader.Reader, d dtype.DType, mnemonic string) (any, error) {
	switch d {
	case dtype.I8:
		v, err := r.I8()
		return v, err
	case dtype.I16:
		v, err := r.I16()
		return v, err
	case dtype.I32:
		v, err := r.I32()
		return v, err
	case dtype.I64:
		v, err := r.I64()
		return v, err
	case dtype.U8:
		v, err := r.U8()
		return v, err
	case dtype.U16:
		v, err := r.U16()
		return v, err
	case dtype.U32:
		v, err := r.U32()
		return v, err
	case dtype.U64:
		v, err := r.U64()
		return v, err
	case dtype.F32:
		v, err := r.F32()
		return v, err
	case dtype.F64:
		v, err := r.F64()
		return v, err
	case dtype.Bool:
		v, err := r.Bool()
		return v, err
	default:
		return nil, vmerr.Newf(vmerr.TypeMismatch, -1, mnemonic, "unknown dtype %v", d)
	}
}
