package bytecode

import (
	"encoding/binary"
	"math"
)

// Builder assembles a literal bytecode program, one instruction at a
// time: a 16-bit little-endian opcode index followed by that opcode's
// fixed-width little-endian immediates. The API is append-only and
// chainable.
type Builder struct {
	code []byte
}

// NewBuilder returns an empty program builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Op appends an opcode index.
func (b *Builder) Op(index int) *Builder {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(index))
	b.code = append(b.code, tmp[:]...)
	return b
}

// U8 appends a single unsigned byte immediate.
func (b *Builder) U8(v uint8) *Builder {
	b.code = append(b.code, v)
	return b
}

// I8 appends a single signed byte immediate.
func (b *Builder) I8(v int8) *Builder {
	return b.U8(uint8(v))
}

// U16 appends a little-endian uint16 immediate.
func (b *Builder) U16(v uint16) *Builder {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.code = append(b.code, tmp[:]...)
	return b
}

// I16 appends a little-endian int16 immediate.
func (b *Builder) I16(v int16) *Builder {
	return b.U16(uint16(v))
}

// Bool appends a single boolean byte immediate.
func (b *Builder) Bool(v bool) *Builder {
	if v {
		return b.U8(1)
	}
	return b.U8(0)
}

// U32 appends a little-endian uint32 immediate.
func (b *Builder) U32(v uint32) *Builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.code = append(b.code, tmp[:]...)
	return b
}

// I32 appends a little-endian int32 immediate.
func (b *Builder) I32(v int32) *Builder {
	return b.U32(uint32(v))
}

// U64 appends a little-endian uint64 immediate.
func (b *Builder) U64(v uint64) *Builder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.code = append(b.code, tmp[:]...)
	return b
}

// I64 appends a little-endian int64 immediate.
func (b *Builder) I64(v int64) *Builder {
	return b.U64(uint64(v))
}

// F32 appends a little-endian IEEE-754 single-precision immediate.
func (b *Builder) F32(v float32) *Builder {
	return b.U32(math.Float32bits(v))
}

// F64 appends a little-endian IEEE-754 double-precision immediate.
func (b *Builder) F64(v float64) *Builder {
	return b.U64(math.Float64bits(v))
}

// Ref appends a fixed-width 32-bit stack reference index.
func (b *Builder) Ref(index int) *Builder {
	return b.U32(uint32(index))
}

// Shape appends a shape immediate: len(extents) consecutive uint32s.
func (b *Builder) Shape(extents []int) *Builder {
	for _, e := range extents {
		b.U32(uint32(e))
	}
	return b
}

// Step is Shape's wire twin for per-axis step factors.
func (b *Builder) Step(by []int) *Builder {
	return b.Shape(by)
}

// Range appends a range immediate: len(bounds) consecutive signed
// start/end int32 pairs.
func (b *Builder) Range(bounds [][2]int) *Builder {
	for _, pair := range bounds {
		b.I32(int32(pair[0]))
		b.I32(int32(pair[1]))
	}
	return b
}

// Mask appends a mask immediate: one byte (0 or 1) per axis.
func (b *Builder) Mask(mask []bool) *Builder {
	for _, m := range mask {
		b.Bool(m)
	}
	return b
}

// Bytes returns the assembled program.
func (b *Builder) Bytes() []byte {
	return b.code
}
