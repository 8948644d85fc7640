// Package bytecode defines the wire-format vocabulary shared between the
// opcode table builder (internal/vm) and bytecode producers: the
// operation-family mnemonics and a minimal assembler for encoding literal
// programs (bytecode.Builder), used by this module's own tests. Compiling a source language down to these
// programs is an upstream tool's job, not this core's.
package bytecode

// Family names are the leading component of every opcode mnemonic.
const (
	FamilyAdd = "add"
	FamilySub = "sub"
	FamilyMul = "mul"
	FamilyDiv = "div"
	FamilyRem = "rem"
	FamilyMin = "min"
	FamilyMax = "max"

	FamilyNeg = "neg"
	FamilyNot = "not"

	FamilyAnd = "and"
	FamilyOr  = "or"
	FamilyXor = "xor"

	FamilyBitAnd = "bit_and"
	FamilyBitOr  = "bit_or"
	FamilyBitXor = "bit_xor"
	FamilyShl    = "shl"
	FamilyShr    = "shr"

	FamilyEq = "eq"
	FamilyNe = "ne"
	FamilyLt = "lt"
	FamilyLe = "le"
	FamilyGt = "gt"
	FamilyGe = "ge"

	FamilyCast    = "cast"
	FamilyFill    = "fill"
	FamilyRef     = "ref"
	FamilySlice   = "slice"
	FamilyFlip    = "flip"
	FamilyStep    = "step"
	FamilyExpand  = "expand"
	FamilyReshape = "reshape"
	FamilyMerge   = "merge"
)

// ArithFamilies are the seven binary numeric families sharing identical
// handler shape.
var ArithFamilies = []string{FamilyAdd, FamilySub, FamilyMul, FamilyDiv, FamilyRem, FamilyMin, FamilyMax}

// CompareFamilies are the six comparison families, valid for every dtype.
var CompareFamilies = []string{FamilyEq, FamilyNe, FamilyLt, FamilyLe, FamilyGt, FamilyGe}

// LogicalFamilies are the three boolean-only logical families.
var LogicalFamilies = []string{FamilyAnd, FamilyOr, FamilyXor}

// BitwiseFamilies are the five integer-only bitwise families.
var BitwiseFamilies = []string{FamilyBitAnd, FamilyBitOr, FamilyBitXor, FamilyShl, FamilyShr}

// ViewFamilies are the four unary families that apply a single view
// transform and materialize.
var ViewFamilies = []string{FamilySlice, FamilyFlip, FamilyStep, FamilyExpand}
