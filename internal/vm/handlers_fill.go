package vm

import (
	"fmt"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/view"
	"tensorvm/internal/vmerr"
)

// registerFillFor registers fill_T across all five ranks: reads a shape
// tuple and one scalar literal from the bytecode stream, producing a
// fresh dense array with every element set to that scalar.
func registerFillFor[T any](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%d", bytecode.FamilyFill, d, rank)
		t.add(mnemonic, func(ex *Executor) error {
			extents, err := ex.reader.Shape(rank)
			if err != nil {
				return err
			}
			raw, err := readScalar(ex.reader, d, mnemonic)
			if err != nil {
				return err
			}
			value, ok := raw.(T)
			if !ok {
				return vmerr.Newf(vmerr.TypeMismatch, -1, mnemonic,
					"decoded scalar has unexpected Go type %T", raw)
			}
			out := array.Fill(view.Shape(extents), value)
			ex.stack.Push(array.Erase(d, out))
			return nil
		})
	}
}

// registerFill registers fill_T for every dtype and rank.
func registerFill(t *Table) {
	registerFillFor[int8](t, dtype.I8)
	registerFillFor[int16](t, dtype.I16)
	registerFillFor[int32](t, dtype.I32)
	registerFillFor[int64](t, dtype.I64)
	registerFillFor[uint8](t, dtype.U8)
	registerFillFor[uint16](t, dtype.U16)
	registerFillFor[uint32](t, dtype.U32)
	registerFillFor[uint64](t, dtype.U64)
	registerFillFor[float32](t, dtype.F32)
	registerFillFor[float64](t, dtype.F64)
	registerFillFor[bool](t, dtype.Bool)
}
