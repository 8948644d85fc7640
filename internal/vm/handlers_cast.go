package vm

import (
	"fmt"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/iterate"
)

// registerCastPair registers cast_S_D across all five ranks: a native Go
// conversion applied element-wise, truncating toward zero for
// float-to-int narrowing exactly as Go's own D(v) conversion does.
func registerCastPair[S, D Numeric](t *Table, from, to dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%s_%d", bytecode.FamilyCast, from, to, rank)
		t.add(mnemonic, func(ex *Executor) error {
			a, err := popTyped[S](ex, from, mnemonic)
			if err != nil {
				return err
			}
			if err := requireRank(mnemonic, rank, a); err != nil {
				return err
			}
			buf := iterate.Map(a.View(), func(v S) D { return D(v) })
			out, err := array.FromBuffer(a.Shape(), buf)
			if err != nil {
				return err
			}
			ex.stack.Push(array.Erase(to, out))
			return nil
		})
	}
}

// registerCastFromBool registers cast_bool_D: false maps to 0, true to 1.
// Plain Go conversion cannot produce a numeric type from bool directly, so
// this family gets its own handler body instead of reusing registerCastPair.
func registerCastFromBool[D Numeric](t *Table, to dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%s_%d", bytecode.FamilyCast, dtype.Bool, to, rank)
		t.add(mnemonic, func(ex *Executor) error {
			a, err := popTyped[bool](ex, dtype.Bool, mnemonic)
			if err != nil {
				return err
			}
			if err := requireRank(mnemonic, rank, a); err != nil {
				return err
			}
			buf := iterate.Map(a.View(), func(v bool) D {
				if v {
					return 1
				}
				return 0
			})
			out, err := array.FromBuffer(a.Shape(), buf)
			if err != nil {
				return err
			}
			ex.stack.Push(array.Erase(to, out))
			return nil
		})
	}
}

// registerCastToBool registers cast_S_bool: zero maps to false, any other
// value to true.
func registerCastToBool[S Numeric](t *Table, from dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%s_%d", bytecode.FamilyCast, from, dtype.Bool, rank)
		t.add(mnemonic, func(ex *Executor) error {
			a, err := popTyped[S](ex, from, mnemonic)
			if err != nil {
				return err
			}
			if err := requireRank(mnemonic, rank, a); err != nil {
				return err
			}
			buf := iterate.Map(a.View(), func(v S) bool { return v != 0 })
			out, err := array.FromBuffer(a.Shape(), buf)
			if err != nil {
				return err
			}
			ex.stack.Push(array.Erase(dtype.Bool, out))
			return nil
		})
	}
}

// registerCast registers cast_S_D for every ordered pair of distinct
// dtypes (110 pairs total: 90 numeric-to-numeric, 10 bool-to-numeric, 10
// numeric-to-bool), each across five ranks.
func registerCast(t *Table) {
	registerCastPair[int8, int16](t, dtype.I8, dtype.I16)
	registerCastPair[int8, int32](t, dtype.I8, dtype.I32)
	registerCastPair[int8, int64](t, dtype.I8, dtype.I64)
	registerCastPair[int8, uint8](t, dtype.I8, dtype.U8)
	registerCastPair[int8, uint16](t, dtype.I8, dtype.U16)
	registerCastPair[int8, uint32](t, dtype.I8, dtype.U32)
	registerCastPair[int8, uint64](t, dtype.I8, dtype.U64)
	registerCastPair[int8, float32](t, dtype.I8, dtype.F32)
	registerCastPair[int8, float64](t, dtype.I8, dtype.F64)

	registerCastPair[int16, int8](t, dtype.I16, dtype.I8)
	registerCastPair[int16, int32](t, dtype.I16, dtype.I32)
	registerCastPair[int16, int64](t, dtype.I16, dtype.I64)
	registerCastPair[int16, uint8](t, dtype.I16, dtype.U8)
	registerCastPair[int16, uint16](t, dtype.I16, dtype.U16)
	registerCastPair[int16, uint32](t, dtype.I16, dtype.U32)
	registerCastPair[int16, uint64](t, dtype.I16, dtype.U64)
	registerCastPair[int16, float32](t, dtype.I16, dtype.F32)
	registerCastPair[int16, float64](t, dtype.I16, dtype.F64)

	registerCastPair[int32, int8](t, dtype.I32, dtype.I8)
	registerCastPair[int32, int16](t, dtype.I32, dtype.I16)
	registerCastPair[int32, int64](t, dtype.I32, dtype.I64)
	registerCastPair[int32, uint8](t, dtype.I32, dtype.U8)
	registerCastPair[int32, uint16](t, dtype.I32, dtype.U16)
	registerCastPair[int32, uint32](t, dtype.I32, dtype.U32)
	registerCastPair[int32, uint64](t, dtype.I32, dtype.U64)
	registerCastPair[int32, float32](t, dtype.I32, dtype.F32)
	registerCastPair[int32, float64](t, dtype.I32, dtype.F64)

	registerCastPair[int64, int8](t, dtype.I64, dtype.I8)
	registerCastPair[int64, int16](t, dtype.I64, dtype.I16)
	registerCastPair[int64, int32](t, dtype.I64, dtype.I32)
	registerCastPair[int64, uint8](t, dtype.I64, dtype.U8)
	registerCastPair[int64, uint16](t, dtype.I64, dtype.U16)
	registerCastPair[int64, uint32](t, dtype.I64, dtype.U32)
	registerCastPair[int64, uint64](t, dtype.I64, dtype.U64)
	registerCastPair[int64, float32](t, dtype.I64, dtype.F32)
	registerCastPair[int64, float64](t, dtype.I64, dtype.F64)

	registerCastPair[uint8, int8](t, dtype.U8, dtype.I8)
	registerCastPair[uint8, int16](t, dtype.U8, dtype.I16)
	registerCastPair[uint8, int32](t, dtype.U8, dtype.I32)
	registerCastPair[uint8, int64](t, dtype.U8, dtype.I64)
	registerCastPair[uint8, uint16](t, dtype.U8, dtype.U16)
	registerCastPair[uint8, uint32](t, dtype.U8, dtype.U32)
	registerCastPair[uint8, uint64](t, dtype.U8, dtype.U64)
	registerCastPair[uint8, float32](t, dtype.U8, dtype.F32)
	registerCastPair[uint8, float64](t, dtype.U8, dtype.F64)

	registerCastPair[uint16, int8](t, dtype.U16, dtype.I8)
	registerCastPair[uint16, int16](t, dtype.U16, dtype.I16)
	registerCastPair[uint16, int32](t, dtype.U16, dtype.I32)
	registerCastPair[uint16, int64](t, dtype.U16, dtype.I64)
	registerCastPair[uint16, uint8](t, dtype.U16, dtype.U8)
	registerCastPair[uint16, uint32](t, dtype.U16, dtype.U32)
	registerCastPair[uint16, uint64](t, dtype.U16, dtype.U64)
	registerCastPair[uint16, float32](t, dtype.U16, dtype.F32)
	registerCastPair[uint16, float64](t, dtype.U16, dtype.F64)

	registerCastPair[uint32, int8](t, dtype.U32, dtype.I8)
	registerCastPair[uint32, int16](t, dtype.U32, dtype.I16)
	registerCastPair[uint32, int32](t, dtype.U32, dtype.I32)
	registerCastPair[uint32, int64](t, dtype.U32, dtype.I64)
	registerCastPair[uint32, uint8](t, dtype.U32, dtype.U8)
	registerCastPair[uint32, uint16](t, dtype.U32, dtype.U16)
	registerCastPair[uint32, uint64](t, dtype.U32, dtype.U64)
	registerCastPair[uint32, float32](t, dtype.U32, dtype.F32)
	registerCastPair[uint32, float64](t, dtype.U32, dtype.F64)

	registerCastPair[uint64, int8](t, dtype.U64, dtype.I8)
	registerCastPair[uint64, int16](t, dtype.U64, dtype.I16)
	registerCastPair[uint64, int32](t, dtype.U64, dtype.I32)
	registerCastPair[uint64, int64](t, dtype.U64, dtype.I64)
	registerCastPair[uint64, uint8](t, dtype.U64, dtype.U8)
	registerCastPair[uint64, uint16](t, dtype.U64, dtype.U16)
	registerCastPair[uint64, uint32](t, dtype.U64, dtype.U32)
	registerCastPair[uint64, float32](t, dtype.U64, dtype.F32)
	registerCastPair[uint64, float64](t, dtype.U64, dtype.F64)

	registerCastPair[float32, int8](t, dtype.F32, dtype.I8)
	registerCastPair[float32, int16](t, dtype.F32, dtype.I16)
	registerCastPair[float32, int32](t, dtype.F32, dtype.I32)
	registerCastPair[float32, int64](t, dtype.F32, dtype.I64)
	registerCastPair[float32, uint8](t, dtype.F32, dtype.U8)
	registerCastPair[float32, uint16](t, dtype.F32, dtype.U16)
	registerCastPair[float32, uint32](t, dtype.F32, dtype.U32)
	registerCastPair[float32, uint64](t, dtype.F32, dtype.U64)
	registerCastPair[float32, float64](t, dtype.F32, dtype.F64)

	registerCastPair[float64, int8](t, dtype.F64, dtype.I8)
	registerCastPair[float64, int16](t, dtype.F64, dtype.I16)
	registerCastPair[float64, int32](t, dtype.F64, dtype.I32)
	registerCastPair[float64, int64](t, dtype.F64, dtype.I64)
	registerCastPair[float64, uint8](t, dtype.F64, dtype.U8)
	registerCastPair[float64, uint16](t, dtype.F64, dtype.U16)
	registerCastPair[float64, uint32](t, dtype.F64, dtype.U32)
	registerCastPair[float64, uint64](t, dtype.F64, dtype.U64)
	registerCastPair[float64, float32](t, dtype.F64, dtype.F32)

	registerCastFromBool[int8](t, dtype.I8)
	registerCastFromBool[int16](t, dtype.I16)
	registerCastFromBool[int32](t, dtype.I32)
	registerCastFromBool[int64](t, dtype.I64)
	registerCastFromBool[uint8](t, dtype.U8)
	registerCastFromBool[uint16](t, dtype.U16)
	registerCastFromBool[uint32](t, dtype.U32)
	registerCastFromBool[uint64](t, dtype.U64)
	registerCastFromBool[float32](t, dtype.F32)
	registerCastFromBool[float64](t, dtype.F64)

	registerCastToBool[int8](t, dtype.I8)
	registerCastToBool[int16](t, dtype.I16)
	registerCastToBool[int32](t, dtype.I32)
	registerCastToBool[int64](t, dtype.I64)
	registerCastToBool[uint8](t, dtype.U8)
	registerCastToBool[uint16](t, dtype.U16)
	registerCastToBool[uint32](t, dtype.U32)
	registerCastToBool[uint64](t, dtype.U64)
	registerCastToBool[float32](t, dtype.F32)
	registerCastToBool[float64](t, dtype.F64)
}
