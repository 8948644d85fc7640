package vm

import (
	"github.com/google/uuid"

	"tensorvm/internal/array"
	"tensorvm/internal/reader"
	"tensorvm/internal/stack"
	"tensorvm/internal/vmerr"
)

// defaultStackHint is the initial capacity reserved for the operand
// stack.
const defaultStackHint = 256

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithStackHint reserves initial operand-stack capacity, a pure
// performance hint: it is never enforced as a limit.
func WithStackHint(n int) Option {
	return func(ex *Executor) { ex.stackHint = n }
}

// Executor reads one opcode at a time from a bytecode stream, dispatches
// it through the opcode Table, and repeats until the stream is exhausted.
// It is single-threaded and synchronous: no handler suspends, and the
// executor owns its Reader and Stack outright.
type Executor struct {
	table  *Table
	reader *reader.Reader
	stack  *stack.Stack

	runID     uuid.UUID
	stackHint int

	opcodesRun int
	maxDepth   int
}

// NewExecutor builds an Executor over program, seeded with the caller's
// initial stack contents.
func NewExecutor(table *Table, program []byte, initial []array.AnyArray, opts ...Option) *Executor {
	ex := &Executor{
		table:     table,
		reader:    reader.New(program),
		runID:     uuid.New(),
		stackHint: defaultStackHint,
	}
	for _, o := range opts {
		o(ex)
	}
	ex.stack = stack.NewWithCapacity(initial, ex.stackHint)
	return ex
}

// RunID reports the correlation ID assigned to this Executor's Run,
// attached to any error it returns.
func (ex *Executor) RunID() uuid.UUID {
	return ex.runID
}

// Stats reports execution counters gathered during Run.
type Stats struct {
	OpcodesExecuted int
	MaxStackDepth   int
	BytesRead       int
}

// Stats returns the counters accumulated so far.
func (ex *Executor) Stats() Stats {
	return Stats{
		OpcodesExecuted: ex.opcodesRun,
		MaxStackDepth:   ex.maxDepth,
		BytesRead:       ex.reader.Offset(),
	}
}

// Run decodes and dispatches opcodes until the bytecode stream is
// exhausted, returning the final stack contents. On the first handler or
// decode failure, Run stops immediately, discards the stack, and returns
// the annotated error.
func (ex *Executor) Run() ([]array.AnyArray, error) {
	for !ex.reader.Done() {
		opIdx, err := ex.reader.Opcode()
		if err != nil {
			return nil, ex.fail(err, opIdx, "?")
		}
		mnemonic, handler, ok := ex.table.Lookup(opIdx)
		if !ok {
			return nil, ex.fail(vmerr.Newf(vmerr.UnknownOpcode, opIdx, "?",
				"opcode %d out of table range [0,%d)", opIdx, ex.table.Len()), opIdx, "?")
		}
		ex.opcodesRun++
		if err := handler(ex); err != nil {
			return nil, ex.fail(err, opIdx, mnemonic)
		}
		if depth := ex.stack.Len(); depth > ex.maxDepth {
			ex.maxDepth = depth
		}
	}
	return ex.stack.Top(), nil
}

// fail annotates err with the opcode index and mnemonic at fault and the
// run's correlation ID. Errors built inside a handler carry the -1 opcode
// sentinel (the handler does not know its own table index), which is
// replaced with opIdx; the mnemonic is always set to the failing opcode's
// table mnemonic ("?" when the opcode could not be decoded or looked up),
// replacing the name of the internal step (e.g. "pop") that built the error.
func (ex *Executor) fail(err error, opIdx int, mnemonic string) error {
	ve, ok := err.(*vmerr.Error)
	if !ok {
		ve = vmerr.Wrap(vmerr.UnknownOpcode, opIdx, mnemonic, err)
	}
	if ve.Opcode < 0 {
		ve.Opcode = opIdx
	}
	ve.Mnemonic = mnemonic
	return ve.WithRun(ex.runID)
}
