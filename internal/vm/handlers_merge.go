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

// registerMergeFor registers merge_T across all five ranks: pop a source
// and a destination array of matching rank, read a range tuple locating
// where the source overlays the destination, and push a new array with
// the destination's elements outside that range unchanged and the
// source's elements written in.
func registerMergeFor[T any](t *Table, d dtype.DType) {
	for _, r := range dtype.Ranks() {
		rank := int(r)
		mnemonic := fmt.Sprintf("%s_%s_%d", bytecode.FamilyMerge, d, rank)
		t.add(mnemonic, func(ex *Executor) error {
			src, err := popTyped[T](ex, d, mnemonic)
			if err != nil {
				return err
			}
			dst, err := popTyped[T](ex, d, mnemonic)
			if err != nil {
				return err
			}
			if err := requireRank(mnemonic, rank, dst, src); err != nil {
				return err
			}
			bounds, err := ex.reader.Range(rank)
			if err != nil {
				return err
			}
			starts := make([]int, rank)
			extents := make([]int, rank)
			for i, b := range bounds {
				extent := dst.Shape()[i]
				start, end := int(b.Start), int(b.End)
				if start < 0 {
					start += extent
				}
				if end < 0 {
					end += extent
				}
				if start < 0 || end > extent || start > end {
					return vmerr.Newf(vmerr.RangeError, -1, mnemonic,
						"axis %d: range [%d,%d) out of bounds for extent %d", i, start, end, extent)
				}
				starts[i] = start
				extents[i] = end - start
			}
			if !view.SameShape(view.Shape(extents), src.Shape()) {
				return vmerr.Newf(vmerr.ShapeMismatch, -1, mnemonic,
					"merge range extents %v do not match source shape %v", extents, src.Shape())
			}

			out := dst.Clone()
			dstView := out.View()
			dstStrides := dstView.Strides()
			buf := out.Buffer()
			srcBuf := iterate.Materialize(src.View())

			pos := 0
			var walk func(axis, offset int)
			walk = func(axis, offset int) {
				if axis == rank {
					buf[offset] = srcBuf[pos]
					pos++
					return
				}
				stride := dstStrides[axis]
				for i := 0; i < extents[axis]; i++ {
					walk(axis+1, offset+(starts[axis]+i)*stride)
				}
			}
			walk(0, dstView.Offset())

			ex.stack.Push(array.Erase(d, out))
			return nil
		})
	}
}

// registerMerge registers merge_T for every dtype and rank.
func registerMerge(t *Table) {
	registerForEveryDType(t,
		registerMergeFor[int8], registerMergeFor[int16], registerMergeFor[int32], registerMergeFor[int64],
		registerMergeFor[uint8], registerMergeFor[uint16], registerMergeFor[uint32], registerMergeFor[uint64],
		registerMergeFor[float32], registerMergeFor[float64], registerMergeFor[bool])
}
