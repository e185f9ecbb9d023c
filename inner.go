package main

import (
	"context"
	"os"

	"github.com/post4go/post4go/internal/flushio"
	"github.com/post4go/post4go/internal/termios"
)

// interpState is the outer interpreter's state (spec.md S3 "Context").
type interpState int

const (
	stateInterpret interpState = iota
	stateCompile
)

// VM aggregates every piece of mutable interpreter state: the three
// stacks, the dictionary, data space, input-source stack, block buffer,
// and process argv -- spec.md S3's "Context". It plays the role the
// teacher's own VM struct does in core.go, generalized from a single flat
// memory image to the dictionary-of-words model spec.md requires.
type VM struct {
	data   *stack
	ret    *stack
	float  *stack
	hasFloat bool

	ds       *dataSpace
	dictHead *word
	words    []*word // xt table; xt n is words[n-1], xt 0 is nilXT, see dict.go

	input    []*source
	state    interpState
	baseAddr uint // data-space address of the BASE variable cell

	trampolineAddr   uint
	replTrampolineXT xt
	lastCreated      *word // most recent CREATEd word, target of a later DOES>

	blk  *blockBuffer
	heap *heapRegion
	raw  *termios.Raw

	out flushio.WriteFlusher
	in  *source // the base input source installed by WithInput

	logfn func(mess string, args ...interface{})

	argv []string

	memLimit    uint
	searchPath  []string
	startupFile string

	closers  []closer
	sigThrow chan throwCode
	sigCh    chan os.Signal
}

type closer interface{ Close() error }

// ip is the inner interpreter's instruction pointer: a byte address into
// data space from which the next execution token (or inline literal) is
// fetched (spec.md S4.4).
var _ = context.Background // context is threaded through VM.Run in api.go

// radix returns the current numeric-literal/print base, stored as an
// ordinary Forth variable (BASE) so user code can fetch/store it with @/!.
func (vm *VM) radix() int { return int(vm.ds.readCell(vm.baseAddr)) }

// logf is a no-op unless -trace installed a logfn (WithLogf). The mark
// argument is one of ">" (entering/leaving a colon definition), "?" (a
// recovered throw) or "#" (REPL halt) -- the same small fixed vocabulary
// the teacher's -debug trace uses to tag its turns.
func (vm *VM) logf(mark, mess string, args ...interface{}) {
	if vm.logfn == nil {
		return
	}
	vm.logfn(mark+" "+mess, args...)
}

// fetchXT reads the cell at ip and advances ip past it.
func (vm *VM) fetchXT(ip *uint) xt {
	x := vm.ds.readCell(*ip)
	*ip += cellSize
	return x
}

// execToken dispatches a single execution token against ip, implementing
// every direct code handle in spec.md S4.4. It returns true when the
// codeReplReturn sentinel is reached, telling the caller's trampoline loop
// to stop.
func (vm *VM) execToken(x xt, ip *uint) (stop bool) {
	w := vm.wordAt(x)
	if w == nil {
		throwValue(throwUndefined)
	}
	switch w.code {
	case codeEnter:
		vm.ret.push(addrCell(*ip))
		*ip = w.dataBase

	case codeExit:
		*ip = vm.ret.pop().addr()

	case codeLit:
		vm.data.push(vm.ds.readCell(*ip))
		*ip += cellSize

	case codeBranch:
		disp := vm.ds.readCell(*ip)
		*ip = uint(int64(*ip) + int64(disp))

	case codeBranchZ:
		disp := vm.ds.readCell(*ip)
		if vm.data.pop() == 0 {
			*ip = uint(int64(*ip) + int64(disp))
		} else {
			*ip += cellSize
		}

	case codeCall:
		disp := vm.ds.readCell(*ip)
		vm.ret.push(addrCell(*ip + cellSize))
		*ip = uint(int64(*ip) + int64(disp))

	case codeExecute:
		x2 := vm.data.pop()
		return vm.execToken(x2, ip)

	case codeDataField:
		vm.data.push(addrCell(w.dataBase + cellSize))

	case codeDoDoes:
		vm.data.push(addrCell(w.dataBase + cellSize))
		vm.ret.push(addrCell(*ip))
		*ip = vm.ds.readCell(w.dataBase).addr()

	case codeLongjmp:
		n := vm.data.pop()
		throwValue(throwCode(n))

	case codeReplReturn:
		return true

	case codePrim:
		w.prim(vm, ip)

	default:
		throwMsg(throwUndefined, "word %q has unknown code handle", w.name)
	}
	return false
}

// callWord runs xt to completion using the two-slot REPL trampoline of
// spec.md S4.5: data[0] holds the xt to run, data[1] the execution token of
// a word whose sole purpose is to stop the loop. This is the "priming a
// two-slot trampoline" text taken literally, rather than smuggled through a
// magic ip sentinel.
func (vm *VM) callWord(x xt) {
	vm.ds.writeCell(vm.trampolineAddr, x)
	vm.ds.writeCell(vm.trampolineAddr+cellSize, vm.replTrampolineXT)
	ip := vm.trampolineAddr
	for {
		x := vm.fetchXT(&ip)
		if vm.execToken(x, &ip) {
			return
		}
	}
}
