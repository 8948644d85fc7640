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

// registerNot registers the unary boolean-only "not" family across all
// five ranks.
func registerNot(t *Table) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%d", bytecode.FamilyNot, dtype.Bool, rank)
		t.add(mnemonic, func(ex *Executor) error {
			a, err := popTyped[bool](ex, dtype.Bool, mnemonic)
			if err != nil {
				return err
			}
			if err := requireRank(mnemonic, rank, a); err != nil {
				return err
			}
			buf := iterate.Map(a.View(), func(v bool) bool { return !v })
			out, err := array.FromBuffer(a.Shape(), buf)
			if err != nil {
				return err
			}
			ex.stack.Push(array.Erase(dtype.Bool, out))
			return nil
		})
	}
}

// registerLogicalFamily registers one boolean binary family (and/or/xor)
// across all five ranks.
func registerLogicalFamily(t *Table, family string, op func(a, b bool) bool) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%d", family, dtype.Bool, rank)
		t.add(mnemonic, func(ex *Executor) error {
			rhs, err := popTyped[bool](ex, dtype.Bool, mnemonic)
			if err != nil {
				return err
			}
			lhs, err := popTyped[bool](ex, dtype.Bool, mnemonic)
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

// registerLogical registers and/or/xor, the three boolean-only binary
// families.
func registerLogical(t *Table) {
	registerLogicalFamily(t, bytecode.FamilyAnd, func(a, b bool) bool { return a && b })
	registerLogicalFamily(t, bytecode.FamilyOr, func(a, b bool) bool { return a || b })
	registerLogicalFamily(t, bytecode.FamilyXor, func(a, b bool) bool { return a != b })
}
