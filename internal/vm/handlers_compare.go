package vm

import (
	"fmt"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/iterate"
	"tensorvm/internal/view"
	"tensorvm/internal/vmerr"
)

// registerCompareFamily registers one comparison family for a single dtype
// across all five ranks. The result is always bool, regardless of
// operand dtype.
func registerCompareFamily[T comparable](t *Table, family string, d dtype.DType, op func(a, b T) bool) {
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
			ex.stack.Push(array.Erase(dtype.Bool, out))
			return nil
		})
	}
}

// registerOrderedCompareFor registers eq/ne/lt/le/gt/ge for one ordered
// (non-bool) numeric dtype.
func registerOrderedCompareFor[T Numeric](t *Table, d dtype.DType) {
	registerCompareFamily(t, bytecode.FamilyEq, d, func(a, b T) bool { return a == b })
	registerCompareFamily(t, bytecode.FamilyNe, d, func(a, b T) bool { return a != b })
	registerCompareFamily(t, bytecode.FamilyLt, d, func(a, b T) bool { return a < b })
	registerCompareFamily(t, bytecode.FamilyLe, d, func(a, b T) bool { return a <= b })
	registerCompareFamily(t, bytecode.FamilyGt, d, func(a, b T) bool { return a > b })
	registerCompareFamily(t, bytecode.FamilyGe, d, func(a, b T) bool { return a >= b })
}

// registerBoolCompare registers all six comparison families for bool,
// with false ordered before true.
func registerBoolCompare(t *Table) {
	toInt := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	registerCompareFamily(t, bytecode.FamilyEq, dtype.Bool, func(a, b bool) bool { return a == b })
	registerCompareFamily(t, bytecode.FamilyNe, dtype.Bool, func(a, b bool) bool { return a != b })
	registerCompareFamily(t, bytecode.FamilyLt, dtype.Bool, func(a, b bool) bool { return toInt(a) < toInt(b) })
	registerCompareFamily(t, bytecode.FamilyLe, dtype.Bool, func(a, b bool) bool { return toInt(a) <= toInt(b) })
	registerCompareFamily(t, bytecode.FamilyGt, dtype.Bool, func(a, b bool) bool { return toInt(a) > toInt(b) })
	registerCompareFamily(t, bytecode.FamilyGe, dtype.Bool, func(a, b bool) bool { return toInt(a) >= toInt(b) })
}

// registerCompare registers eq/ne/lt/le/gt/ge across all eleven dtypes;
// the comparison families are valid for every dtype, bool included.
func registerCompare(t *Table) {
	registerOrderedCompareFor[int8](t, dtype.I8)
	registerOrderedCompareFor[int16](t, dtype.I16)
	registerOrderedCompareFor[int32](t, dtype.I32)
	registerOrderedCompareFor[int64](t, dtype.I64)
	registerOrderedCompareFor[uint8](t, dtype.U8)
	registerOrderedCompareFor[uint16](t, dtype.U16)
	registerOrderedCompareFor[uint32](t, dtype.U32)
	registerOrderedCompareFor[uint64](t, dtype.U64)
	registerOrderedCompareFor[float32](t, dtype.F32)
	registerOrderedCompareFor[float64](t, dtype.F64)
	registerBoolCompare(t)
}
