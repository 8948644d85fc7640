package vm

import "golang.org/x/exp/constraints"

// Numeric is every element type arithmetic opcodes operate over: the
// ten numeric dtypes. Bool is excluded; it has its own logical-only
// family.
type Numeric interface {
	constraints.Integer | constraints.Float
}
