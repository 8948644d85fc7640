// Package vm implements the dense opcode table and single-threaded
// executor loop: a flat, zero-indexed array of
// (mnemonic, handler) entries addressed by a single linear opcode index,
// built once by registering every operation family across its eligible
// element types and ranks.
package vm

// HandlerFn is the shape every opcode handler obeys: read
// any immediates from the executor's Reader, pop the required operands
// from its Stack, downcast, compute, and push exactly one result.
type HandlerFn func(ex *Executor) error

type entry struct {
	mnemonic string
	handler  HandlerFn
}

// Table is the dense opcode table: a flat slice indexed directly by
// opcode, with a side index from mnemonic back to opcode for assemblers
// and tests that want to build programs symbolically.
type Table struct {
	entries []entry
	byName  map[string]int
}

func newTableBuilder() *Table {
	return &Table{byName: make(map[string]int)}
}

// add appends a new entry and returns its assigned opcode index. Entries
// are always appended in the fixed registration order NewTable uses, so
// the same call sequence always yields the same index for the same
// mnemonic.
func (t *Table) add(mnemonic string, h HandlerFn) int {
	idx := len(t.entries)
	t.entries = append(t.entries, entry{mnemonic: mnemonic, handler: h})
	t.byName[mnemonic] = idx
	return idx
}

// Lookup resolves an opcode index to its mnemonic and handler. ok is false
// when the index is outside the table.
func (t *Table) Lookup(i int) (mnemonic string, handler HandlerFn, ok bool) {
	if i < 0 || i >= len(t.entries) {
		return "", nil, false
	}
	e := t.entries[i]
	return e.mnemonic, e.handler, true
}

// Index resolves a mnemonic to its opcode index, for symbolic program
// assembly (bytecode.Builder callers, tests).
func (t *Table) Index(mnemonic string) (int, bool) {
	i, ok := t.byName[mnemonic]
	return i, ok
}

// Len reports the table's size.
func (t *Table) Len() int {
	return len(t.entries)
}

// NewTable builds the complete, dense opcode table by registering every
// operation family across its eligible dtypes and ranks, in a
// fixed order: arithmetic, neg, not, logical, bitwise, compare, cast,
// fill, ref, slice, flip, step, expand, reshape, merge.
func NewTable() *Table {
	t := newTableBuilder()
	registerArith(t)
	registerNeg(t)
	registerNot(t)
	registerLogical(t)
	registerBitwise(t)
	registerCompare(t)
	registerCast(t)
	registerFill(t)
	registerRef(t)
	registerSlice(t)
	registerFlip(t)
	registerStep(t)
	registerExpand(t)
	registerReshape(t)
	registerMerge(t)
	return t
}
