package vm

import (
	"reflect"
	"testing"

	"tensorvm/internal/array"
	"tensorvm/internal/bytecode"
	"tensorvm/internal/dtype"
	"tensorvm/internal/view"
	"tensorvm/internal/vmerr"
)

func i32Array(shape []int, vals []int32) array.AnyArray {
	a, err := array.FromBuffer(view.Shape(shape), vals)
	if err != nil {
		panic(err)
	}
	return array.Erase(dtype.I32, a)
}

func mustOp(t *testing.T, table *Table, mnemonic string) int {
	t.Helper()
	idx, ok := table.Index(mnemonic)
	if !ok {
		t.Fatalf("opcode %q not found in table", mnemonic)
	}
	return idx
}

func TestSliceScenario(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{5}, []int32{0, 1, 2, 3, 4})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "slice_i32_1")).Range([][2]int{{1, 4}}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, ok := array.Downcast[int32](results[len(results)-1], dtype.I32)
	if !ok {
		t.Fatal("expected an i32 result")
	}
	want := []int32{1, 2, 3}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("slice result = %v, want %v", got.Buffer(), want)
	}
}

func TestFlipTwiceRestoresOriginal(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{4}, []int32{10, 20, 30, 40})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "flip_i32_1")).Mask([]bool{true}).
		Op(mustOp(t, table, "flip_i32_1")).Mask([]bool{true}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{10, 20, 30, 40}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("double-flip result = %v, want original %v", got.Buffer(), want)
	}
}

func TestStepScenario(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{6}, []int32{0, 1, 2, 3, 4, 5})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "step_i32_1")).Step([]int{2}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{0, 2, 4}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("step result = %v, want %v", got.Buffer(), want)
	}
}

func TestExpandThenAddBroadcastsOperand(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{
		i32Array([]int{1}, []int32{5}),
		i32Array([]int{3}, []int32{1, 2, 3}),
	}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "expand_i32_1")).Shape([]int{3}).
		Op(mustOp(t, table, "ref_i32_1")).Ref(1).
		Op(mustOp(t, table, "add_i32_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{6, 7, 8}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("expand-then-add result = %v, want %v", got.Buffer(), want)
	}
}

func TestCastScenario(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{2}, []int32{3, -2})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "cast_i32_f32_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, ok := array.Downcast[float32](results[len(results)-1], dtype.F32)
	if !ok {
		t.Fatal("expected an f32 result")
	}
	want := []float32{3, -2}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("cast result = %v, want %v", got.Buffer(), want)
	}
}

func TestMergeOverlaysSourceIntoDestination(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{
		i32Array([]int{5}, []int32{0, 0, 0, 0, 0}),
		i32Array([]int{2}, []int32{7, 8}),
	}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "ref_i32_1")).Ref(1).
		Op(mustOp(t, table, "merge_i32_1")).Range([][2]int{{1, 3}}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{0, 7, 8, 0, 0}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("merge result = %v, want %v", got.Buffer(), want)
	}
}

func TestDivisionByZeroFails(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{
		i32Array([]int{1}, []int32{5}),
		i32Array([]int{1}, []int32{0}),
	}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "ref_i32_1")).Ref(1).
		Op(mustOp(t, table, "div_i32_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.DivisionByZero {
		t.Errorf("got error %v, want DivisionByZero", err)
	}
}

func TestShapeMismatchFails(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{
		i32Array([]int{2}, []int32{1, 2}),
		i32Array([]int{3}, []int32{1, 2, 3}),
	}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "ref_i32_1")).Ref(1).
		Op(mustOp(t, table, "add_i32_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected a shape mismatch error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.ShapeMismatch {
		t.Errorf("got error %v, want ShapeMismatch", err)
	}
}

func TestStackUnderflowFails(t *testing.T) {
	table := NewTable()
	program := bytecode.NewBuilder().Op(mustOp(t, table, "neg_i32_1")).Bytes()

	ex := NewExecutor(table, program, nil)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected a stack underflow error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.StackUnderflow {
		t.Errorf("got error %v, want StackUnderflow", err)
	}
}

func TestUnknownOpcodeFails(t *testing.T) {
	table := NewTable()
	program := bytecode.NewBuilder().Op(table.Len() + 1000).Bytes()

	ex := NewExecutor(table, program, nil)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected an unknown opcode error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.UnknownOpcode {
		t.Errorf("got error %v, want UnknownOpcode", err)
	}
}

func TestBytecodeUnderflowFails(t *testing.T) {
	table := NewTable()
	ex := NewExecutor(table, []byte{0x01}, nil)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected a bytecode underflow error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.BytecodeUnderflow {
		t.Errorf("got error %v, want BytecodeUnderflow", err)
	}
}

func boolArray(shape []int, vals []bool) array.AnyArray {
	a, err := array.FromBuffer(view.Shape(shape), vals)
	if err != nil {
		panic(err)
	}
	return array.Erase(dtype.Bool, a)
}

func TestBoolOrderingComparesFalseBeforeTrue(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{
		boolArray([]int{1}, []bool{false}),
		boolArray([]int{1}, []bool{true}),
	}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_bool_1")).Ref(0).
		Op(mustOp(t, table, "ref_bool_1")).Ref(1).
		Op(mustOp(t, table, "lt_bool_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, ok := array.Downcast[bool](results[len(results)-1], dtype.Bool)
	if !ok {
		t.Fatal("expected a bool result")
	}
	if !reflect.DeepEqual(got.Buffer(), []bool{true}) {
		t.Errorf("false lt_bool_1 true = %v, want [true]", got.Buffer())
	}
}

func TestDispatchIsDeterministicAcrossTableBuilds(t *testing.T) {
	a := NewTable()
	b := NewTable()
	idxA := mustOp(t, a, "add_f64_3")
	idxB := mustOp(t, b, "add_f64_3")
	if idxA != idxB {
		t.Errorf("opcode index for add_f64_3 differs across builds: %d vs %d", idxA, idxB)
	}
	if a.Len() != b.Len() {
		t.Errorf("table length differs across builds: %d vs %d", a.Len(), b.Len())
	}
}

func TestRunReportsStats(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{1}, []int32{1})}
	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "neg_i32_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	if _, err := ex.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	stats := ex.Stats()
	if stats.OpcodesExecuted != 2 {
		t.Errorf("OpcodesExecuted = %d, want 2", stats.OpcodesExecuted)
	}
	if stats.BytesRead != len(program) {
		t.Errorf("BytesRead = %d, want %d", stats.BytesRead, len(program))
	}
}

func iota4x4(t *testing.T) array.AnyArray {
	t.Helper()
	vals := make([]int32, 16)
	for i := range vals {
		vals[i] = int32(i)
	}
	return i32Array([]int{4, 4}, vals)
}

func TestSliceTwoDimensional(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{iota4x4(t)}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_2")).Ref(0).
		Op(mustOp(t, table, "slice_i32_2")).Range([][2]int{{1, 3}, {0, 3}}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	if !view.SameShape(got.Shape(), view.Shape{2, 3}) {
		t.Fatalf("slice result shape = %v, want [2 3]", got.Shape())
	}
	want := []int32{4, 5, 6, 8, 9, 10}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("slice result = %v, want %v", got.Buffer(), want)
	}
}

func TestStepTwoDimensional(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{iota4x4(t)}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_2")).Ref(0).
		Op(mustOp(t, table, "step_i32_2")).Step([]int{2, 2}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{0, 2, 8, 10}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("step result = %v, want %v", got.Buffer(), want)
	}
}

func TestExpandThenFlipBroadcastRow(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{1, 3}, []int32{1, 2, 3})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_2")).Ref(0).
		Op(mustOp(t, table, "expand_i32_2")).Shape([]int{2, 3}).
		Op(mustOp(t, table, "flip_i32_2")).Mask([]bool{false, true}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{3, 2, 1, 3, 2, 1}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("expand-then-flip result = %v, want %v", got.Buffer(), want)
	}
}

func TestFillThenAddBroadcast(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{1, 3}, []int32{1, 2, 3})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_2")).Ref(0).
		Op(mustOp(t, table, "expand_i32_2")).Shape([]int{2, 3}).
		Op(mustOp(t, table, "fill_i32_2")).Shape([]int{2, 3}).I32(10).
		Op(mustOp(t, table, "add_i32_2")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{11, 12, 13, 11, 12, 13}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("fill-then-add result = %v, want %v", got.Buffer(), want)
	}
}

func TestCastFloatTruncatesTowardZero(t *testing.T) {
	table := NewTable()
	a, err := array.FromBuffer(view.Shape{2}, []float32{1.7, -2.3})
	if err != nil {
		t.Fatalf("FromBuffer error: %v", err)
	}
	initial := []array.AnyArray{array.Erase(dtype.F32, a)}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_f32_1")).Ref(0).
		Op(mustOp(t, table, "cast_f32_i32_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	want := []int32{1, -2}
	if !reflect.DeepEqual(got.Buffer(), want) {
		t.Errorf("cast result = %v, want %v", got.Buffer(), want)
	}
}

func TestReshapeChangesRankPreservingOrder(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{6}, []int32{1, 2, 3, 4, 5, 6})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "reshape_i32_1_2")).Shape([]int{2, 3}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	results, err := ex.Run()
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
	if !view.SameShape(got.Shape(), view.Shape{2, 3}) {
		t.Fatalf("reshape result shape = %v, want [2 3]", got.Shape())
	}
	if !reflect.DeepEqual(got.Buffer(), []int32{1, 2, 3, 4, 5, 6}) {
		t.Errorf("reshape reordered elements: %v", got.Buffer())
	}
}

func TestReshapeArityMismatchFails(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{6}, []int32{1, 2, 3, 4, 5, 6})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "reshape_i32_1_2")).Shape([]int{4, 4}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected a reshape arity mismatch error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.ReshapeArityMismatch {
		t.Errorf("got error %v, want ReshapeArityMismatch", err)
	}
}

func TestTypeMismatchFails(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{1}, []int32{1})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "neg_i64_1")).
		Bytes()

	ex := NewExecutor(table, program, initial)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected a type mismatch error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.TypeMismatch {
		t.Errorf("got error %v, want TypeMismatch", err)
	}
}

func TestSliceWithInvertedRangeFails(t *testing.T) {
	table := NewTable()
	initial := []array.AnyArray{i32Array([]int{4}, []int32{0, 1, 2, 3})}

	program := bytecode.NewBuilder().
		Op(mustOp(t, table, "ref_i32_1")).Ref(0).
		Op(mustOp(t, table, "slice_i32_1")).Range([][2]int{{3, 1}}).
		Bytes()

	ex := NewExecutor(table, program, initial)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected a range error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok || ve.Kind != vmerr.RangeError {
		t.Errorf("got error %v, want RangeError", err)
	}
}

func TestErrorCarriesOpcodeAndMnemonic(t *testing.T) {
	table := NewTable()
	program := bytecode.NewBuilder().Op(mustOp(t, table, "neg_i32_1")).Bytes()

	ex := NewExecutor(table, program, nil)
	_, err := ex.Run()
	if err == nil {
		t.Fatal("expected an error")
	}
	ve, ok := err.(*vmerr.Error)
	if !ok {
		t.Fatalf("error type = %T, want *vmerr.Error", err)
	}
	if ve.Mnemonic != "neg_i32_1" {
		t.Errorf("error mnemonic = %q, want neg_i32_1", ve.Mnemonic)
	}
	wantOp := mustOp(t, table, "neg_i32_1")
	if ve.Opcode != wantOp {
		t.Errorf("error opcode = %d, want %d", ve.Opcode, wantOp)
	}
	if ve.RunID != ex.RunID() {
		t.Errorf("error run id = %s, want %s", ve.RunID, ex.RunID())
	}
}

func TestRepeatedExecutionIsDeterministic(t *testing.T) {
	table := NewTable()
	run := func() []int32 {
		initial := []array.AnyArray{iota4x4(t)}
		program := bytecode.NewBuilder().
			Op(mustOp(t, table, "ref_i32_2")).Ref(0).
			Op(mustOp(t, table, "flip_i32_2")).Mask([]bool{true, false}).
			Op(mustOp(t, table, "step_i32_2")).Step([]int{2, 1}).
			Op(mustOp(t, table, "slice_i32_2")).Range([][2]int{{0, 2}, {1, 4}}).
			Bytes()
		ex := NewExecutor(table, program, initial)
		results, err := ex.Run()
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		got, _ := array.Downcast[int32](results[len(results)-1], dtype.I32)
		return got.Buffer()
	}
	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ: %v vs %v", first, second)
	}
}
