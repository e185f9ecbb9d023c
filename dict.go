package main

import "strings"

// code names the inner interpreter's direct code handles (spec.md S4.4).
// codePrim is the escape hatch for the large majority of words, whose
// behavior is an ordinary Go closure rather than one of the threaded-code
// primitives the dispatcher must special-case.
type code int

const (
	codeEnter     code = iota // colon definition body
	codeExit                  // ; -- pop return stack into ip
	codeLit                   // inline literal follows in the instruction stream
	codeBranch                // unconditional branch
	codeBranchZ               // pop; branch if zero
	codeCall                  // push return addr, then branch
	codeExecute               // pop xt, dispatch it
	codeDataField             // CREATEd word with no DOES>
	codeDoDoes                // CREATEd word after DOES>
	codeLongjmp               // pop n, throw(n)
	codeReplReturn            // sentinel landing word for the REPL trampoline
	codePrim                  // native Go primitive
)

// word flag bits (spec.md S3 "Word").
const (
	flagImmediate    uint8 = 1 << 0
	flagCreated      uint8 = 1 << 1
	flagHidden       uint8 = 1 << 2
	flagCompileOnly  uint8 = 1 << 3
)

// primFunc is the behavior of a codePrim word. ip is passed by pointer so
// that the handful of primitives that must see or rewrite the inner
// interpreter's instruction pointer -- (DOES>) chiefly -- can do so; most
// primitives ignore it.
type primFunc func(vm *VM, ip *uint)

// word is one dictionary entry. Colon-defined and CREATEd words keep their
// compiled body/payload in the shared data-space arena (dataBase, dataLen);
// native primitives allot nothing, so their dataLen stays zero.
type word struct {
	prev *word
	name string
	bits uint8
	code code
	prim primFunc

	dataBase uint // byte offset into the owning VM's data space
	dataLen  uint // bytes currently allotted to this word
	xtCache  xt   // memoized execution token, assigned on first xtOf call
}

func (w *word) hidden() bool       { return w.bits&flagHidden != 0 }
func (w *word) immediate() bool    { return w.bits&flagImmediate != 0 }
func (w *word) created() bool      { return w.bits&flagCreated != 0 }
func (w *word) compileOnly() bool  { return w.bits&flagCompileOnly != 0 }

func (w *word) setHidden(v bool)      { w.setBit(flagHidden, v) }
func (w *word) setImmediate(v bool)   { w.setBit(flagImmediate, v) }
func (w *word) setCreated(v bool)     { w.setBit(flagCreated, v) }
func (w *word) setCompileOnly(v bool) { w.setBit(flagCompileOnly, v) }

func (w *word) setBit(bit uint8, v bool) {
	if v {
		w.bits |= bit
	} else {
		w.bits &^= bit
	}
}

// ndata reports how many whole cells are currently allotted to this word.
func (w *word) ndata() int { return int(w.dataLen / cellSize) }

// xt is an execution token: an opaque handle the inner interpreter
// dispatches. It is implemented as a 1-based index into VM.words so that
// compiled bodies can embed it as an ordinary Cell without resorting to
// unsafe pointer arithmetic -- the teacher's threaded bodies are Go slices
// of int, this is a Go slice of Cell indexing a parallel table of *word.
type xt = Cell

const nilXT xt = 0

// findName walks the dictionary newest-first, comparing length then bytes
// case-insensitively, skipping HIDDEN and zero-length names (spec.md S4.2).
// Later definitions shadow earlier ones because the walk starts at head.
func (vm *VM) findName(name string) *word {
	if name == "" {
		return nil
	}
	for w := vm.dictHead; w != nil; w = w.prev {
		if w.hidden() || len(w.name) == 0 {
			continue
		}
		if len(w.name) != len(name) {
			continue
		}
		if strings.EqualFold(w.name, name) {
			return w
		}
	}
	return nil
}

// xtOf returns the execution token for a live *word, registering it in the
// word table on first sight.
func (vm *VM) xtOf(w *word) xt {
	if w == nil {
		return nilXT
	}
	if w.xtCache != 0 {
		return w.xtCache
	}
	vm.words = append(vm.words, w)
	w.xtCache = xt(len(vm.words))
	return w.xtCache
}

func (vm *VM) wordAt(x xt) *word {
	i := int(x)
	if i <= 0 || i > len(vm.words) {
		return nil
	}
	return vm.words[i-1]
}

// defineWord appends a new word at the current dictionary head and returns
// it. The data-space base is taken from the allocator's current, already
// cell-aligned, here (dataspace.go's wordCreate aligns before calling this).
func (vm *VM) defineWord(name string, c code, prim primFunc) *word {
	w := &word{prev: vm.dictHead, name: name, code: c, prim: prim, dataBase: vm.ds.here}
	vm.dictHead = w
	return w
}

// unlinkHead removes the current dictionary head, used by compile-abort
// recovery (spec.md S4.5 "Abort during compile").
func (vm *VM) unlinkHead() *word {
	w := vm.dictHead
	if w == nil {
		return nil
	}
	vm.dictHead = w.prev
	if w.xtCache != 0 {
		// leave a hole; indices must stay stable for any xt still live on a
		// stack or embedded in another word's compiled body.
		vm.words[w.xtCache-1] = nil
	}
	return w
}
