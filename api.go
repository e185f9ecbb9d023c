package main

import (
	"context"
	"errors"
	"io"

	"github.com/post4go/post4go/internal/panicerr"
)

// New constructs a VM: default options run first to size the stacks,
// data space and I/O, the caller's options run next and may override any
// of them, and only then does bootstrap lay dictionary and trampoline
// state onto the *final* data space -- following the teacher's api.go
// shape (defaultOptions, then VMOptions(opts...).apply), generalized so
// that data-space-resizing options are safe to apply before anything has
// been allocated into it.
func New(opts ...VMOption) *VM {
	vm := &VM{}
	defaultOptions.apply(vm)
	VMOptions(opts).apply(vm)
	vm.bootstrap()
	return vm
}

// bootstrap lays down the pieces that must exist before any Forth text
// runs: the BASE variable, the REPL's two-slot trampoline, the compile-time
// words, and every primitive (spec.md S3 "Context", S4.5's trampoline).
func (vm *VM) bootstrap() {
	vm.sigThrow = make(chan throwCode, 1)
	vm.heap = newHeapRegion()

	vm.ds.align()
	vm.baseAddr = vm.ds.allot(cellSize, 0)
	vm.ds.writeCell(vm.baseAddr, 10)

	vm.ds.align()
	vm.trampolineAddr = vm.ds.allot(2*cellSize, 0)

	vm.installCompileWords()
	w := vm.addCodeWord("(REPL-RETURN)", codeReplReturn)
	vm.replTrampolineXT = vm.xtOf(w)

	vm.installPrimitives()

	if vm.startupFile != "" {
		a, n := vm.stashString(vm.startupFile)
		vm.data.push(addrCell(a))
		vm.data.push(n)
		vm.doIncluded()
	}
}

// stashString copies s into a scratch cell in data space and returns its
// (addr, len) -- used by bootstrap to hand INCLUDED a filename the same
// way user code would via S".
func (vm *VM) stashString(s string) (uint, Cell) {
	addr := vm.ds.allot(len(s), 0)
	copy(vm.ds.bytes(addr, uint(len(s))), s)
	return addr, Cell(len(s))
}

// Run drives the REPL to completion: io.EOF on the outermost source is a
// clean exit, not an error, exactly as the teacher's api.go treats it.
// internal/panicerr wraps the whole run so a genuine Go bug inside a
// primitive surfaces as a structured error instead of crashing the
// process -- the same net the teacher throws around vm.run.
func (vm *VM) Run(ctx context.Context) error {
	sigCh := vm.installSignals()
	defer vm.stopSignals(sigCh)

	err := panicerr.Recover("VM", func() error {
		return vm.run(ctx)
	})
	vm.logf("#", "halt: %v", err)
	if err == nil || errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	var bye byeSignal
	if errors.As(err, &bye) {
		return nil
	}
	return err
}

// Close flushes output, restores the terminal if KEY?/KEY left it raw,
// flushes any dirty block buffer, and closes every resource an option
// opened (the block file, chiefly) -- a scope guard callers are expected
// to defer right after New.
func (vm *VM) Close() error {
	vm.restoreCookedMode()
	if vm.blk != nil {
		vm.blk.flush()
	}
	if vm.out != nil {
		vm.out.Flush()
	}
	var firstErr error
	for _, c := range vm.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
