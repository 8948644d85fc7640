package vm

import (
	"fmt"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/vmerr"
)

// registerRefFor registers ref_T across all five ranks: reads a stack
// index immediate, clones the referenced array (the clone never aliases
// the original buffer), and pushes the copy.
func registerRefFor[T any](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%d", bytecode.FamilyRef, d, rank)
		t.add(mnemonic, func(ex *Executor) error {
			idx, err := ex.reader.Ref()
			if err != nil {
				return err
			}
			src, err := ex.stack.Get(idx)
			if err != nil {
				return err
			}
			a, ok := array.Downcast[T](src, d)
			if !ok {
				return vmerr.Newf(vmerr.TypeMismatch, -1, mnemonic,
					"referenced stack entry is not a %s array", d)
			}
			if err := requireRank(mnemonic, rank, a); err != nil {
				return err
			}
			clone, ok := array.CloneTyped[T](src, d)
			if !ok {
				return vmerr.Newf(vmerr.TypeMismatch, -1, mnemonic, "clone of referenced stack entry failed")
			}
			ex.stack.Push(clone)
			return nil
		})
	}
}

// registerRef registers ref_T for every dtype and rank.
func registerRef(t *Table) {
	registerRefFor[int8](t, dtype.I8)
	registerRefFor[int16](t, dtype.I16)
	registerRefFor[int32](t, dtype.I32)
	registerRefFor[int64](t, dtype.I64)
	registerRefFor[uint8](t, dtype.U8)
	registerRefFor[uint16](t, dtype.U16)
	registerRefFor[uint32](t, dtype.U32)
	registerRefFor[uint64](t, dtype.U64)
	registerRefFor[float32](t, dtype.F32)
	registerRefFor[float64](t, dtype.F64)
	registerRefFor[bool](t, dtype.Bool)
}
