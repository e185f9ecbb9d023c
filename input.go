package main

import (
	"bufio"
	"io"

	"github.com/post4go/post4go/internal/runeio"
)

// inputKind distinguishes the sentinels spec.md S3 "Input source" assigns
// to the file-handle field: terminal, an open file, an in-memory string
// (EVALUATE), or a block buffer.
type inputKind int

const (
	inputTerminal inputKind = iota
	inputFile
	inputString
	inputBlock
)

// source is one frame of the input-source stack: a buffer plus an offset
// into it, refilled on demand from whatever stream backs it. The teacher's
// internal/fileinput.Input tracks a queue of whole files with line/location
// bookkeeping; this is the same idea narrowed to exactly one stream per
// frame; the VM pushes a new frame instead of queueing, so EVALUATE and
// INCLUDED can be reentered and unwound in LIFO order (spec.md S4.9).
type source struct {
	kind inputKind
	name string

	rr   io.RuneReader
	closer io.Closer

	buf    []byte
	off    int
	unget  rune
	hasUng bool

	blockNum uint

	line int
}

func newTerminalSource(r io.Reader) *source {
	return &source{kind: inputTerminal, name: "<stdin>", rr: runeio.NewReader(r)}
}

func newFileSource(name string, r io.Reader, closer io.Closer) *source {
	return &source{kind: inputFile, name: name, rr: bufio.NewReader(r), closer: closer}
}

func newStringSource(name string, s []byte) *source {
	return &source{kind: inputString, name: name, buf: s, line: 1}
}

func newBlockSource(blk uint, buf []byte) *source {
	return &source{kind: inputBlock, name: "<block>", buf: buf, blockNum: blk, line: 1}
}

func (s *source) close() {
	if s.closer != nil {
		s.closer.Close()
	}
}

// refill reads one more line into buf for stream-backed sources; string and
// block sources never refill -- once their fixed buffer is exhausted the
// caller unwinds back to whoever pushed the frame (EVALUATE or LOAD
// returns).
func (s *source) refill() bool {
	if s.rr == nil {
		return false
	}
	var line []byte
	for {
		r, _, err := s.rr.ReadRune()
		if err != nil {
			if len(line) > 0 {
				break
			}
			return false
		}
		if r == '\n' {
			break
		}
		line = append(line, []byte(string(r))...)
	}
	s.buf = line
	s.off = 0
	s.line++
	return true
}

func (s *source) exhausted() bool { return s.off >= len(s.buf) }

// VM.input is the stack of input sources described by spec.md S3; pushSource
// is used by EVALUATE and INCLUDED, popSource restores the prior frame on
// both normal return and throw unwind (a scope guard, per spec.md S9).
func (vm *VM) pushSource(s *source) {
	vm.input = append(vm.input, s)
}

func (vm *VM) popSource() *source {
	n := len(vm.input)
	if n == 0 {
		return nil
	}
	s := vm.input[n-1]
	vm.input = vm.input[:n-1]
	s.close()
	return s
}

func (vm *VM) curSource() *source {
	if len(vm.input) == 0 {
		return nil
	}
	return vm.input[len(vm.input)-1]
}

func (vm *VM) isInteractive() bool {
	s := vm.curSource()
	return vm.state == stateInterpret && s != nil && s.kind == inputTerminal
}
