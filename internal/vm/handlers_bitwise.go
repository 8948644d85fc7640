package vm

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/iterate"
	"tensorvm/internal/view"
	"tensorvm/internal/vmerr"
)

// registerBitwiseFamily registers one integer-only bitwise family across
// all five ranks for a single dtype.
func registerBitwiseFamily[T constraints.Integer](t *Table, family string, d dtype.DType, op func(a, b T) T) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%d", family, d, rank)
		t.add(mnemonic, func(ex *Executor) error {
			rhs, err := popTyped[T](ex, d, mnemonic)
			if err != nil {
				return err
			}
			lhs, err := popTyped[T](ex, d, mnemonic)
			if err != nil {
				return err
			}
			if err := requireRank(mnemonic, rank, lhs, rhs); err != nil {
				return err
			}
			if !view.SameShape(lhs.Shape(), rhs.Shape()) {
				return vmerr.Newf(vmerr.ShapeMismatch, -1, mnemonic,
					"operand shapes differ: %v vs %v", lhs.Shape(), rhs.Shape())
			}
			buf := iterate.Zip(lhs.View(), rhs.View(), op)
			out, err := array.FromBuffer(lhs.Shape(), buf)
			if err != nil {
				return err
			}
			ex.stack.Push(array.Erase(d, out))
			return nil
		})
	}
}

func registerBitwiseFor[T constraints.Integer](t *Table, d dtype.DType) {
	registerBitwiseFamily(t, bytecode.FamilyBitAnd, d, func(a, b T) T { return a & b })
	registerBitwiseFamily(t, bytecode.FamilyBitOr, d, func(a, b T) T { return a | b })
	registerBitwiseFamily(t, bytecode.FamilyBitXor, d, func(a, b T) T { return a ^ b })
	registerBitwiseFamily(t, bytecode.FamilyShl, d, func(a, b T) T { return a << b })
	registerBitwiseFamily(t, bytecode.FamilyShr, d, func(a, b T) T { return a >> b })
}

// registerBitwise registers bit_and, bit_or, bit_xor, shl, shr across
// the eight integer dtypes; the bitwise families exclude floats and
// bool.
func registerBitwise(t *Table) {
	registerBitwiseFor[int8](t, dtype.I8)
	registerBitwiseFor[int16](t, dtype.I16)
	registerBitwiseFor[int32](t, dtype.I32)
	registerBitwiseFor[int64](t, dtype.I64)
	registerBitwiseFor[uint8](t, dtype.U8)
	registerBitwiseFor[uint16](t, dtype.U16)
	registerBitwiseFor[uint32](t, dtype.U32)
	registerBitwiseFor[uint64](t, dtype.U64)
}
