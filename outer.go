package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/post4go/post4go/internal/fileinput"
	"github.com/post4go/post4go/internal/runeio"
)

// writeOut and writeRune are the REPL's only path to the configured
// output, flushed through internal/flushio the way the teacher's core.go
// writeRune/readRune pair does.
func (vm *VM) writeOut(s string) {
	if _, err := io.WriteString(vm.out, s); err != nil {
		throwMsg(throwIOError, "%v", err)
	}
}

func (vm *VM) writeRune(r rune) {
	if _, err := runeio.WriteANSIRune(vm.out, r); err != nil {
		throwMsg(throwIOError, "%v", err)
	}
}

// run is the outer interpreter's main loop (spec.md S4.5). Each turn's
// throws are caught by runOnce's deferred recoverTurn, the REPL's landing
// pad; VM.Run (api.go) wraps the whole loop in internal/panicerr so a
// genuine Go panic comes back as an error.
func (vm *VM) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := vm.runOnce(); err != nil {
			return err
		}
	}
}

// runOnce processes exactly one throw-protected "turn": refill if needed,
// consume one token, print "ok " when the line is drained interactively.
// Returning a non-nil error means EOF on the outermost source -- time to
// stop, not a failure.
func (vm *VM) runOnce() (exit error) {
	defer vm.recoverTurn(&exit)

	vm.checkSignal()

	s := vm.curSource()
	if s == nil {
		return io.EOF
	}
	if s.exhausted() {
		if !s.refill() {
			if len(vm.input) == 1 {
				return io.EOF
			}
			vm.popSource()
			return nil
		}
		if vm.isInteractive() {
			vm.out.Flush()
		}
	}

	tok := vm.parseName()
	if len(tok) == 0 {
		if vm.isInteractive() {
			vm.restoreCookedMode()
			vm.writeOut("ok ")
			vm.out.Flush()
		}
		return nil
	}

	vm.interpretToken(string(tok))
	return nil
}

// interpretToken implements spec.md S4.5 steps 3-5: look the token up,
// then execute-or-compile it, falling back to the numeric parser.
func (vm *VM) interpretToken(name string) {
	if w := vm.findName(name); w != nil {
		if vm.state == stateInterpret || w.immediate() {
			vm.callWord(vm.xtOf(w))
		} else {
			vm.appendCell(vm.xtOf(w))
		}
		return
	}

	res := parseNumber([]byte(name), vm.radix())
	if !res.ok {
		vm.writeOut(name + " ")
		throwMsg(throwUndefined, "undefined word %q", name)
	}

	if res.isFloat {
		if !vm.hasFloat {
			throwValue(throwBadBase)
		}
		if vm.state == stateInterpret {
			vm.float.push(cellFromFloat(res.fvalue))
		} else {
			vm.appendCell(vm.xtNamed("(LIT)"))
			vm.appendCell(cellFromFloat(res.fvalue))
			vm.appendCell(vm.xtNamed("(TOFLOAT)"))
		}
		return
	}

	if vm.state == stateInterpret {
		vm.data.push(res.value)
	} else {
		vm.appendCell(vm.xtNamed("(LIT)"))
		vm.appendCell(res.value)
	}
}

// recoverTurn is the REPL's single landing pad (spec.md S7/S9): it
// recovers a thrown non-local exit, classifies it, resets the stacks it
// names, discards any half-finished compile, and prints a diagnostic.
func (vm *VM) recoverTurn(exit *error) {
	r := recover()
	if r == nil {
		return
	}
	t, ok := r.(thrown)
	if !ok {
		panic(r) // a genuine Go bug, not a Forth throw; let VM.Run's panicerr net catch it
	}

	compiling := vm.dictHead != nil && vm.dictHead.hidden()
	class := classifyThrow(t.code, compiling)

	if class&recoverResetData != 0 {
		vm.data.reset()
		if vm.hasFloat {
			vm.float.reset()
		}
	}
	if class&(recoverResetData|recoverResetReturn) != 0 {
		vm.ret.reset()
	}
	if class&recoverAbandonDef != 0 {
		vm.reportAbandonedDef()
		vm.abandonCompile()
	}
	vm.state = stateInterpret

	vm.logf("?", "%v", t)

	if t.code != throwAbort && t.code != throwQuit {
		vm.writeOut(fmt.Sprintf("\n%s%v\n", vm.diagnosticPrefix(), t))
		vm.out.Flush()
	}
}

// diagnosticPrefix prepends "name:line: " to a thrown diagnostic for any
// non-interactive source (a file INCLUDED or a string EVALUATEd), using
// internal/fileinput.Location the way gothird's own source locations report
// a position; the interactive terminal has no useful line number, so it's
// left bare the way the REPL's "ok " prompt already is.
func (vm *VM) diagnosticPrefix() string {
	s := vm.curSource()
	if s == nil || s.kind == inputTerminal {
		return ""
	}
	loc := fileinput.Location{Name: s.name, Line: s.line}
	return loc.String() + ": "
}

func (vm *VM) reportAbandonedDef() {
	if vm.dictHead != nil && vm.dictHead.hidden() {
		vm.writeOut(fmt.Sprintf("(discarding unfinished definition of %q)\n", vm.dictHead.name))
	}
}

// doEvaluate implements EVALUATE(addr,len): push a string input source,
// drain it through the REPL loop, and restore the prior source on any
// exit path (spec.md S4.9).
func (vm *VM) doEvaluate() {
	n := int(vm.data.pop())
	a := vm.data.pop().addr()
	buf := append([]byte(nil), vm.ds.bytes(a, uint(n))...)
	vm.pushSource(newStringSource("<evaluate>", buf))
	defer vm.popSource()
	vm.drainSource()
}

// doIncluded implements INCLUDED: try the filename as given, then under
// each directory of the search path (POST4_PATH, via WithSearchPath), open
// it, and drain it through the REPL loop line by line (spec.md S4.9, S6).
// There is no compiled-in default search path.
func (vm *VM) doIncluded() {
	n := int(vm.data.pop())
	a := vm.data.pop().addr()
	name := string(vm.ds.bytes(a, uint(n)))

	path, f, err := vm.openIncluded(name)
	if err != nil {
		throwValue(throwENOENT)
	}
	vm.pushSource(newFileSource(path, f, f))
	defer vm.popSource()
	vm.drainSource()
}

func (vm *VM) openIncluded(name string) (string, *os.File, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		for _, dir := range vm.searchPath {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	var lastErr error
	for _, c := range candidates {
		f, err := os.Open(c)
		if err == nil {
			return c, f, nil
		}
		lastErr = err
	}
	return "", nil, lastErr
}

// drainSource runs the REPL loop until the current (topmost) source is
// exhausted and fails to refill, then returns -- used by both EVALUATE and
// INCLUDED so that the outer run() loop only ever sees the outermost
// terminal/file source.
func (vm *VM) drainSource() {
	depth := len(vm.input)
	for len(vm.input) >= depth {
		s := vm.curSource()
		if s.exhausted() && !s.refill() {
			return
		}
		tok := vm.parseName()
		if len(tok) == 0 {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					for len(vm.input) > depth {
						vm.popSource()
					}
					panic(r)
				}
			}()
			vm.interpretToken(string(tok))
		}()
	}
}

// compileOrPushString implements S"/S\": at interpret time, copy the
// delimited string into freshly allotted data space and leave (addr len)
// on the stack; in compile state, compile it as a (SLIT) literal.
func (vm *VM) compileOrPushString(delim byte, escape bool) {
	tok := vm.parse(delim, escape)
	if vm.state == stateInterpret {
		addr := vm.ds.allot(len(tok), vm.compilingDataBase())
		copy(vm.ds.bytes(addr, uint(len(tok))), tok)
		vm.data.push(addrCell(addr))
		vm.data.push(Cell(len(tok)))
		return
	}
	vm.appendCell(vm.xtNamed("(SLIT)"))
	vm.appendCell(Cell(len(tok)))
	base := vm.ds.allot(len(tok), vm.compilingDataBase())
	copy(vm.ds.bytes(base, uint(len(tok))), tok)
	vm.growCurrentWord(len(tok))
	vm.ds.align()
}

// compileOrTypeString implements ." : like S" but TYPEs immediately rather
// than leaving (addr len).
func (vm *VM) compileOrTypeString(delim byte) {
	tok := vm.parse(delim, false)
	if vm.state == stateInterpret {
		vm.writeOut(string(tok))
		return
	}
	vm.appendCell(vm.xtNamed("(SLIT)"))
	vm.appendCell(Cell(len(tok)))
	base := vm.ds.allot(len(tok), vm.compilingDataBase())
	copy(vm.ds.bytes(base, uint(len(tok))), tok)
	vm.growCurrentWord(len(tok))
	vm.ds.align()
	vm.appendCell(vm.xtNamed("(TYPE)"))
}

// doWords lists every visible dictionary name, newest first -- an addition
// over spec.md's distillation, grounded in post4.c's WORDS primitive
// (SPEC_FULL.md S3).
func (vm *VM) doWords() {
	var names []string
	for w := vm.dictHead; w != nil; w = w.prev {
		if w.hidden() || w.name == "" {
			continue
		}
		names = append(names, w.name)
	}
	vm.writeOut(strings.Join(names, " ") + "\n")
}

// environmentAnswers implements post4.c's fixed ENVIRONMENT? query set
// (SPEC_FULL.md S3); spec.md is silent on it, so this is pure addition.
var environmentAnswers = map[string]Cell{
	"/COUNTED-STRING":     255,
	"/HOLD":               256,
	"/PAD":                256,
	"ADDRESS-UNITY-BITS":  8,
	"MAX-CHAR":            0xff,
	"MAX-N":               Cell(math.MaxInt64),
	"MAX-U":               -1,
	"RETURN-STACK-CELLS":  0, // answered from the live stack capacity in doEnvironmentQuery
	"STACK-CELLS":         0,
}

func (vm *VM) doEnvironmentQuery() {
	n := int(vm.data.pop())
	a := vm.data.pop().addr()
	name := strings.ToUpper(string(vm.ds.bytes(a, uint(n))))
	switch name {
	case "RETURN-STACK-CELLS":
		vm.data.push(Cell(vm.ret.capacity()))
		vm.data.push(boolCell(true))
	case "STACK-CELLS":
		vm.data.push(Cell(vm.data.capacity()))
		vm.data.push(boolCell(true))
	default:
		if v, ok := environmentAnswers[name]; ok {
			vm.data.push(v)
			vm.data.push(boolCell(true))
		} else {
			vm.data.push(boolCell(false))
		}
	}
}
