package vm

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/iterate"
	"tensorvm/internal/view"
	"tensorvm/internal/vmerr"
)

// binOp is one arithmetic family's per-element operation. Division-like
// families return an error to signal DivisionByZero; every other family
// always succeeds.
type binOp[T any] func(a, b T) (T, error)

// registerBinaryNumeric registers one (family, dtype) combination across
// all five ranks, sharing a single rank-generic handler body; rank is a
// runtime-checked invariant, not a Go type parameter.
func registerBinaryNumeric[T any](t *Table, family string, d dtype.DType, op binOp[T]) {
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
			buf, err := iterate.ZipErr(lhs.View(), rhs.View(), op)
			if err != nil {
				return err
			}
			out, err := array.FromBuffer(lhs.Shape(), buf)
			if err != nil {
				return err
			}
			ex.stack.Push(array.Erase(d, out))
			return nil
		})
	}
}

func noErr[T any](v T) (T, error) { return v, nil }

func registerArithInt[T constraints.Integer](t *Table, d dtype.DType) {
	registerBinaryNumeric(t, bytecode.FamilyAdd, d, func(a, b T) (T, error) { return noErr(a + b) })
	registerBinaryNumeric(t, bytecode.FamilySub, d, func(a, b T) (T, error) { return noErr(a - b) })
	registerBinaryNumeric(t, bytecode.FamilyMul, d, func(a, b T) (T, error) { return noErr(a * b) })
	registerBinaryNumeric(t, bytecode.FamilyDiv, d, func(a, b T) (T, error) {
		if b == 0 {
			return 0, vmerr.New(vmerr.DivisionByZero, -1, bytecode.FamilyDiv, "integer division by zero")
		}
		return a / b, nil
	})
	registerBinaryNumeric(t, bytecode.FamilyRem, d, func(a, b T) (T, error) {
		if b == 0 {
			return 0, vmerr.New(vmerr.DivisionByZero, -1, bytecode.FamilyRem, "integer remainder by zero")
		}
		return a % b, nil
	})
	registerBinaryNumeric(t, bytecode.FamilyMin, d, func(a, b T) (T, error) {
		if a < b {
			return noErr(a)
		}
		return noErr(b)
	})
	registerBinaryNumeric(t, bytecode.FamilyMax, d, func(a, b T) (T, error) {
		if a > b {
			return noErr(a)
		}
		return noErr(b)
	})
}

func registerArithFloat[T constraints32or64](t *Table, d dtype.DType, mod func(a, b T) T) {
	registerBinaryNumeric(t, bytecode.FamilyAdd, d, func(a, b T) (T, error) { return noErr(a + b) })
	registerBinaryNumeric(t, bytecode.FamilySub, d, func(a, b T) (T, error) { return noErr(a - b) })
	registerBinaryNumeric(t, bytecode.FamilyMul, d, func(a, b T) (T, error) { return noErr(a * b) })
	registerBinaryNumeric(t, bytecode.FamilyDiv, d, func(a, b T) (T, error) { return noErr(a / b) })
	registerBinaryNumeric(t, bytecode.FamilyRem, d, func(a, b T) (T, error) { return noErr(mod(a, b)) })
	registerBinaryNumeric(t, bytecode.FamilyMin, d, func(a, b T) (T, error) {
		if a < b {
			return noErr(a)
		}
		return noErr(b)
	})
	registerBinaryNumeric(t, bytecode.FamilyMax, d, func(a, b T) (T, error) {
		if a > b {
			return noErr(a)
		}
		return noErr(b)
	})
}

// constraints32or64 restricts registerArithFloat to the two IEEE-754
// floating-point dtypes.
type constraints32or64 interface {
	~float32 | ~float64
}

// registerArith registers the seven arithmetic families (add, sub, mul,
// div, rem, min, max) over the ten numeric dtypes. Unsigned subtraction
// wraps natively, Go's default for unsigned integer types.
func registerArith(t *Table) {
	registerArithInt[int8](t, dtype.I8)
	registerArithInt[int16](t, dtype.I16)
	registerArithInt[int32](t, dtype.I32)
	registerArithInt[int64](t, dtype.I64)
	registerArithInt[uint8](t, dtype.U8)
	registerArithInt[uint16](t, dtype.U16)
	registerArithInt[uint32](t, dtype.U32)
	registerArithInt[uint64](t, dtype.U64)
	registerArithFloat[float32](t, dtype.F32, func(a, b float32) float32 { return float32(math.Mod(float64(a), float64(b))) })
	registerArithFloat[float64](t, dtype.F64, math.Mod)
}
