package reader

import (
	"testing"

	"tensorvm/internal/bytecode"
)

func TestOpcodeAndImmediatesRoundTrip(t *testing.T) {
	b := bytecode.NewBuilder().
		Op(42).
		U32(7).
		I32(-3).
		F64(2.5).
		Bool(true).
		Ref(11)
	r := New(b.Bytes())

	op, err := r.Opcode()
	if err != nil || op != 42 {
		t.Fatalf("Opcode() = (%d, %v), want (42, nil)", op, err)
	}
	if v, err := r.U32(); err != nil || v != 7 {
		t.Fatalf("U32() = (%d, %v), want (7, nil)", v, err)
	}
	if v, err := r.I32(); err != nil || v != -3 {
		t.Fatalf("I32() = (%d, %v), want (-3, nil)", v, err)
	}
	if v, err := r.F64(); err != nil || v != 2.5 {
		t.Fatalf("F64() = (%v, %v), want (2.5, nil)", v, err)
	}
	if v, err := r.Bool(); err != nil || v != true {
		t.Fatalf("Bool() = (%v, %v), want (true, nil)", v, err)
	}
	if v, err := r.Ref(); err != nil || v != 11 {
		t.Fatalf("Ref() = (%d, %v), want (11, nil)", v, err)
	}
	if !r.Done() {
		t.Error("expected reader to be exhausted")
	}
}

func TestShapeRangeMask(t *testing.T) {
	b := bytecode.NewBuilder().
		Shape([]int{2, 3}).
		Range([][2]int{{-1, 5}, {0, -2}}).
		Mask([]bool{true, false, true})
	r := New(b.Bytes())

	shape, err := r.Shape(2)
	if err != nil {
		t.Fatalf("Shape(2) error: %v", err)
	}
	if shape[0] != 2 || shape[1] != 3 {
		t.Errorf("Shape(2) = %v, want [2 3]", shape)
	}

	bounds, err := r.Range(2)
	if err != nil {
		t.Fatalf("Range(2) error: %v", err)
	}
	if bounds[0].Start != -1 || bounds[0].End != 5 || bounds[1].Start != 0 || bounds[1].End != -2 {
		t.Errorf("Range(2) = %+v, want [{-1 5} {0 -2}]", bounds)
	}

	mask, err := r.Mask(3)
	if err != nil {
		t.Fatalf("Mask(3) error: %v", err)
	}
	if !mask[0] || mask[1] || !mask[2] {
		t.Errorf("Mask(3) = %v, want [true false true]", mask)
	}
}

func TestUnderflowReportsBytecodeUnderflow(t *testing.T) {
	r := New([]byte{1})
	if _, err := r.Opcode(); err == nil {
		t.Fatal("expected an error reading an opcode from a 1-byte stream")
	}
}

func TestDoneAndRemaining(t *testing.T) {
	r := New([]byte{0, 0, 0, 0})
	if r.Done() {
		t.Fatal("fresh reader over 4 bytes should not be done")
	}
	if r.Remaining() != 4 {
		t.Errorf("Remaining() = %d, want 4", r.Remaining())
	}
	if _, err := r.U32(); err != nil {
		t.Fatalf("U32() error: %v", err)
	}
	if !r.Done() {
		t.Error("reader should be exhausted after consuming all 4 bytes")
	}
}
