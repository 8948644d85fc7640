// Package vmerr defines the tensor VM's closed set of error kinds and the
// structured error value the executor surfaces on first failure.
package vmerr

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind names one failure class the executor can surface. The set is closed;
// no handler invents a new kind.
type Kind string

const (
	StackUnderflow       Kind = "StackUnderflow"
	TypeMismatch         Kind = "TypeMismatch"
	ShapeMismatch        Kind = "ShapeMismatch"
	ReshapeArityMismatch Kind = "ReshapeArityMismatch"
	RangeError           Kind = "RangeError"
	BytecodeUnderflow    Kind = "BytecodeUnderflow"
	UnknownOpcode        Kind = "UnknownOpcode"
	DivisionByZero       Kind = "DivisionByZero"
)

// Error is the value the executor returns on first failure. It carries the
// opcode index and mnemonic at the point of failure, plus the
// kind and a human-readable message, wrapped with a stack trace via
// github.com/pkg/errors so the program counter at fault survives beyond
// the one-line message.
type Error struct {
	Kind     Kind
	Opcode   int
	Mnemonic string
	Message  string
	RunID    uuid.UUID
	cause    error
}

// New constructs an Error with a stack trace captured at the call site.
func New(kind Kind, opcode int, mnemonic, message string) *Error {
	return &Error{
		Kind:     kind,
		Opcode:   opcode,
		Mnemonic: mnemonic,
		Message:  message,
		cause:    errors.New(message),
	}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, opcode int, mnemonic, format string, args ...interface{}) *Error {
	return New(kind, opcode, mnemonic, fmt.Sprintf(format, args...))
}

// Wrap attaches kind/opcode/mnemonic context to an existing cause,
// preserving its stack trace if it already carries one.
func Wrap(kind Kind, opcode int, mnemonic string, cause error) *Error {
	return &Error{
		Kind:     kind,
		Opcode:   opcode,
		Mnemonic: mnemonic,
		Message:  cause.Error(),
		cause:    errors.WithStack(cause),
	}
}

// WithRun attaches a run-correlation ID, set by the executor before
// returning the error to the caller.
func (e *Error) WithRun(id uuid.UUID) *Error {
	e.RunID = id
	return e
}

func (e *Error) Error() string {
	if e.RunID == uuid.Nil {
		return fmt.Sprintf("%s at opcode %d (%s): %s", e.Kind, e.Opcode, e.Mnemonic, e.Message)
	}
	return fmt.Sprintf("%s at opcode %d (%s) [run %s]: %s", e.Kind, e.Opcode, e.Mnemonic, e.RunID, e.Message)
}

// Unwrap exposes the underlying stack-trace-carrying cause to errors.As/Is.
func (e *Error) Unwrap() error {
	return e.cause
}

// ShapeSize renders an element count and byte size in a human-readable
// form for diagnostic messages, e.g. 2,097,152 four-byte elements render
// as "2,097,152 elements (8.4 MB)".
func ShapeSize(elements int, dtypeSize int) string {
	bytes := uint64(elements) * uint64(dtypeSize)
	return fmt.Sprintf("%s elements (%s)", humanize.Comma(int64(elements)), humanize.Bytes(bytes))
}
