package vm

import (
	"fmt"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/view"
)

// registerReshapeFor registers reshape_T for one dtype across every
// (sourceRank, targetRank) pair: reads a target-shape tuple and calls
// Array.Reshape, which fails with ReshapeArityMismatch on element-count
// disagreement.
func registerReshapeFor[T any](t *Table, d dtype.DType) {
	for _, sr := range dtype.Ranks() {
		srcRank := int(sr)
		for _, tr := range dtype.Ranks() {
			dstRank := int(tr)
			mnemonic := fmt.Sprintf("%s_%s_%d_%d", bytecode.FamilyReshape, d, srcRank, dstRank)
			t.add(mnemonic, func(ex *Executor) error {
				a, err := popTyped[T](ex, d, mnemonic)
				if err != nil {
					return err
				}
				if err := requireRank(mnemonic, srcRank, a); err != nil {
					return err
				}
				target, err := ex.reader.Shape(dstRank)
				if err != nil {
					return err
				}
				out, err := a.Reshape(view.Shape(target))
				if err != nil {
					return err
				}
				ex.stack.Push(array.Erase(d, out))
				return nil
			})
		}
	}
}

// registerReshape registers reshape_T across every dtype and source/target
// rank pair (11 dtypes x 5 x 5 = 275 entries).
func registerReshape(t *Table) {
	registerForEveryDType(t,
		registerReshapeFor[int8], registerReshapeFor[int16], registerReshapeFor[int32], registerReshapeFor[int64],
		registerReshapeFor[uint8], registerReshapeFor[uint16], registerReshapeFor[uint32], registerReshapeFor[uint64],
		registerReshapeFor[float32], registerReshapeFor[float64], registerReshapeFor[bool])
}
