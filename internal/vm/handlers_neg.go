package vm

import (
	"fmt"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/iterate"
)

// integer is every dtype neg applies to: the eight integer dtypes only.
// Unlike the other arithmetic families, neg excludes floats as well as
// bool. Unsigned negation wraps (two's-complement).
type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64
}

func registerNegFor[T integer](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%d", bytecode.FamilyNeg, d, rank)
		t.add(mnemonic, func(ex *Executor) error {
			a, err := popTyped[T](ex, d, mnemonic)
			if err != nil {
				return err
			}
			if err := requireRank(mnemonic, rank, a); err != nil {
				return err
			}
			buf := iterate.Map(a.View(), func(v T) T { return -v })
			out, err := array.FromBuffer(a.Shape(), buf)
			if err != nil {
				return err
			}
			ex.stack.Push(array.Erase(d, out))
			return nil
		})
	}
}

// registerNeg registers neg_T for the eight integer dtypes. Unsigned neg
// wraps natively in Go.
func registerNeg(t *Table) {
	registerNegFor[int8](t, dtype.I8)
	registerNegFor[int16](t, dtype.I16)
	registerNegFor[int32](t, dtype.I32)
	registerNegFor[int64](t, dtype.I64)
	registerNegFor[uint8](t, dtype.U8)
	registerNegFor[uint16](t, dtype.U16)
	registerNegFor[uint32](t, dtype.U32)
	registerNegFor[uint64](t, dtype.U64)
}
