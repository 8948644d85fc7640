package bytecode

import (
	"reflect"
	"testing"
)

func TestOpEncodesLittleEndianU16(t *testing.T) {
	got := NewBuilder().Op(0x0102).Bytes()
	want := []byte{0x02, 0x01}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Op(0x0102) = %v, want %v", got, want)
	}
}

func TestShapeEncodesConsecutiveU32s(t *testing.T) {
	got := NewBuilder().Shape([]int{1, 2}).Bytes()
	want := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Shape([1 2]) = %v, want %v", got, want)
	}
}

func TestRangeEncodesSignedPairs(t *testing.T) {
	got := NewBuilder().Range([][2]int{{-1, 2}}).Bytes()
	want := []byte{0xff, 0xff, 0xff, 0xff, 2, 0, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Range([-1,2]) = %v, want %v", got, want)
	}
}

func TestMaskEncodesOneByteEach(t *testing.T) {
	got := NewBuilder().Mask([]bool{true, false, true}).Bytes()
	want := []byte{1, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Mask([t f t]) = %v, want %v", got, want)
	}
}

func TestBuilderChainsAcrossInstructions(t *testing.T) {
	got := NewBuilder().Op(1).U32(2).Op(3).Bytes()
	if len(got) != 2+4+2 {
		t.Fatalf("chained builder length = %d, want %d", len(got), 8)
	}
}
