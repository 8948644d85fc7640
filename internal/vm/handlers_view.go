package vm

import (
	"fmt"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/iterate"
	"tensorvm/internal/view"
)

// registerViewFamily registers one of the four unary view-transform
// families (slice, flip, step, expand) for a single dtype and rank: pop
// one operand, read the family's own immediate, apply the matching
// view.View transform, materialize, push.
func registerViewFamily[T any](t *Table, family string, d dtype.DType, rank int,
	apply func(v view.View[T], rd *executorReader) (view.View[T], error)) {
	mnemonic := fmt.Sprintf("%s_%s_%d", family, d, rank)
	t.add(mnemonic, func(ex *Executor) error {
		a, err := popTyped[T](ex, d, mnemonic)
		if err != nil {
			return err
		}
		if err := requireRank(mnemonic, rank, a); err != nil {
			return err
		}
		transformed, err := apply(a.View(), &executorReader{ex: ex})
		if err != nil {
			return err
		}
		buf := iterate.Materialize(transformed)
		out, err := array.FromBuffer(transformed.Shape(), buf)
		if err != nil {
			return err
		}
		ex.stack.Push(array.Erase(d, out))
		return nil
	})
}

// executorReader is a thin adapter so registerViewFamily's apply callback
// can read its own immediate from the executor's Reader without every
// family having to duplicate the pop/requireRank/materialize scaffolding.
type executorReader struct {
	ex *Executor
}

func registerSliceFor[T any](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		registerViewFamily[T](t, bytecode.FamilySlice, d, rank, func(v view.View[T], rd *executorReader) (view.View[T], error) {
			bounds, err := rd.ex.reader.Range(rank)
			if err != nil {
				return view.View[T]{}, err
			}
			ranges := make([]view.Range, rank)
			for i, b := range bounds {
				ranges[i] = view.Range{Start: int(b.Start), End: int(b.End)}
			}
			return v.Sub(ranges)
		})
	}
}

func registerFlipFor[T any](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		registerViewFamily[T](t, bytecode.FamilyFlip, d, rank, func(v view.View[T], rd *executorReader) (view.View[T], error) {
			mask, err := rd.ex.reader.Mask(rank)
			if err != nil {
				return view.View[T]{}, err
			}
			return v.Flip(mask)
		})
	}
}

func registerStepFor[T any](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		registerViewFamily[T](t, bytecode.FamilyStep, d, rank, func(v view.View[T], rd *executorReader) (view.View[T], error) {
			by, err := rd.ex.reader.Step(rank)
			if err != nil {
				return view.View[T]{}, err
			}
			return v.Step(by)
		})
	}
}

func registerExpandFor[T any](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		registerViewFamily[T](t, bytecode.FamilyExpand, d, rank, func(v view.View[T], rd *executorReader) (view.View[T], error) {
			target, err := rd.ex.reader.Shape(rank)
			if err != nil {
				return view.View[T]{}, err
			}
			return v.Expand(view.Shape(target))
		})
	}
}

// registerSlice, registerFlip, registerStep, registerExpand each register
// their family across all eleven dtypes and five ranks.
func registerSlice(t *Table) {
	registerForEveryDType(t,
		registerSliceFor[int8], registerSliceFor[int16], registerSliceFor[int32], registerSliceFor[int64],
		registerSliceFor[uint8], registerSliceFor[uint16], registerSliceFor[uint32], registerSliceFor[uint64],
		registerSliceFor[float32], registerSliceFor[float64], registerSliceFor[bool])
}

func registerFlip(t *Table) {
	registerForEveryDType(t,
		registerFlipFor[int8], registerFlipFor[int16], registerFlipFor[int32], registerFlipFor[int64],
		registerFlipFor[uint8], registerFlipFor[uint16], registerFlipFor[uint32], registerFlipFor[uint64],
		registerFlipFor[float32], registerFlipFor[float64], registerFlipFor[bool])
}

func registerStep(t *Table) {
	registerForEveryDType(t,
		registerStepFor[int8], registerStepFor[int16], registerStepFor[int32], registerStepFor[int64],
		registerStepFor[uint8], registerStepFor[uint16], registerStepFor[uint32], registerStepFor[uint64],
		registerStepFor[float32], registerStepFor[float64], registerStepFor[bool])
}

func registerExpand(t *Table) {
	registerForEveryDType(t,
		registerExpandFor[int8], registerExpandFor[int16], registerExpandFor[int32], registerExpandFor[int64],
		registerExpandFor[uint8], registerExpandFor[uint16], registerExpandFor[uint32], registerExpandFor[uint64],
		registerExpandFor[float32], registerExpandFor[float64], registerExpandFor[bool])
}

// registerForEveryDType calls one per-dtype registration function for each
// of the eleven dtypes, in dtype.All order, pairing each function with its
// matching dtype constant.
func registerForEveryDType(t *Table,
	i8, i16, i32, i64, u8, u16, u32, u64, f32, f64, b func(*Table, dtype.DType)) {
	i8(t, dtype.I8)
	i16(t, dtype.I16)
	i32(t, dtype.I32)
	i64(t, dtype.I64)
	u8(t, dtype.U8)
	u16(t, dtype.U16)
	u32(t, dtype.U32)
	u64(t, dtype.U64)
	f32(t, dtype.F32)
	f64(t, dtype.F64)
	b(t, dtype.Bool)
}
