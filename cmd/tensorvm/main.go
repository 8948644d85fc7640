// Command tensorvm runs a compiled tensor bytecode program and prints
// its final stack contents: load bytes, execute, report. Producing the
// bytecode is an upstream tool's job.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"tensorvm/internal/array"
	"tensorvm/internal/dtype"
	"tensorvm/internal/vm"
	"tensorvm/internal/vmerr"
)

func main() {
	stackHint := flag.Int("stack-hint", 0, "initial operand-stack capacity hint (0 = default)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <bytecode-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "tensorvm: %v\n", err)
		os.Exit(1)
	}

	var opts []vm.Option
	if *stackHint > 0 {
		opts = append(opts, vm.WithStackHint(*stackHint))
	}

	table := vm.NewTable()
	ex := vm.NewExecutor(table, program, nil, opts...)

	results, err := ex.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tensorvm: run failed:", err)
		if ve, ok := err.(*vmerr.Error); ok {
			fmt.Fprintf(os.Stderr, "  kind: %s\n", ve.Kind)
		}
		os.Exit(1)
	}

	stats := ex.Stats()
	fmt.Printf("run %s: %s opcodes, %s bytes, max depth %d\n",
		ex.RunID(), humanize.Comma(int64(stats.OpcodesExecuted)), humanize.Bytes(uint64(stats.BytesRead)), stats.MaxStackDepth)

	for i, v := range results {
		fmt.Printf("[%d] %s\n", i, describe(v))
	}
}

// describe renders one stack slot's dtype, shape and elements for human
// inspection, downcasting against every dtype tag in turn (the same
// tag-compare-then-assert pattern the opcode handlers use internally).
func describe(v array.AnyArray) string {
	switch v.DType() {
	case dtype.I8:
		return formatArray[int8](v, dtype.I8)
	case dtype.I16:
		return formatArray[int16](v, dtype.I16)
	case dtype.I32:
		return formatArray[int32](v, dtype.I32)
	case dtype.I64:
		return formatArray[int64](v, dtype.I64)
	case dtype.U8:
		return formatArray[uint8](v, dtype.U8)
	case dtype.U16:
		return formatArray[uint16](v, dtype.U16)
	case dtype.U32:
		return formatArray[uint32](v, dtype.U32)
	case dtype.U64:
		return formatArray[uint64](v, dtype.U64)
	case dtype.F32:
		return formatArray[float32](v, dtype.F32)
	case dtype.F64:
		return formatArray[float64](v, dtype.F64)
	case dtype.Bool:
		return formatArray[bool](v, dtype.Bool)
	default:
		return fmt.Sprintf("<unknown dtype %v>", v.DType())
	}
}

func formatArray[T any](v array.AnyArray, d dtype.DType) string {
	a, ok := array.Downcast[T](v, d)
	if !ok {
		return fmt.Sprintf("<%s: downcast failed>", d)
	}
	return fmt.Sprintf("%s%v %v (%s)", d, a.Shape(), a.Buffer(), vmerr.ShapeSize(a.Shape().Elements(), d.Size()))
}
