package main

import (
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/post4go/post4go/internal/flushio"
)

// VMOption configures a *VM at construction time, following the teacher's
// options.go functional-option shape generalized from a single flat image
// to this VM's several independently-sized regions (spec.md S3, S6).
type VMOption interface{ apply(vm *VM) }

const (
	defaultDataStack   = 256
	defaultReturnStack = 256
	defaultFloatStack  = 64
	defaultDataSpace   = 64 * 1024
)

var defaultOptions = VMOptions{
	withInput(strings.NewReader("")),
	withOutput(ioutil.Discard),
	withDataStackSize(defaultDataStack),
	withReturnStackSize(defaultReturnStack),
	withDataSpaceSize(defaultDataSpace),
}

// VMOptions collapses a slice of options into one, applied in order --
// used to build up the fixed defaultOptions list above and by New to
// combine defaults with the caller's own options.
type VMOptions []VMOption

func (opts VMOptions) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

type optionFunc func(vm *VM)

func (f optionFunc) apply(vm *VM) { f(vm) }

func WithInput(r io.Reader) VMOption { return withInput(r) }

// withInput replaces the VM's base input source outright -- the one frame
// that is never popped by the REPL loop itself, as opposed to the
// EVALUATE/INCLUDED/LOAD frames pushSource layers on top of it. Only
// os.Stdin attached to a terminal (a character device) is treated as the
// interactive terminal sentinel spec.md S3 describes; any other reader (a
// test fixture, a piped file, stdin fed from a pipe) behaves as an
// ordinary refillable stream and never gets an "ok " prompt.
func withInput(r io.Reader) VMOption {
	return optionFunc(func(vm *VM) {
		var s *source
		if fi, err := os.Stdin.Stat(); r == os.Stdin && err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			s = newTerminalSource(r)
		} else {
			s = newFileSource("<input>", r, nil)
		}
		vm.in = s
		vm.input = []*source{s}
	})
}

func WithOutput(w io.Writer) VMOption { return withOutput(w) }

func withOutput(w io.Writer) VMOption {
	return optionFunc(func(vm *VM) {
		if vm.out != nil {
			vm.out.Flush()
		}
		vm.out = flushio.NewWriteFlusher(w)
	})
}

// WithTee duplicates everything written to the configured output onto w as
// well; flushing the VM's output flushes both writers.
func WithTee(w io.Writer) VMOption {
	return optionFunc(func(vm *VM) {
		vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(w))
	})
}

func WithDataStackSize(n int) VMOption   { return withDataStackSize(n) }
func WithReturnStackSize(n int) VMOption { return withReturnStackSize(n) }
func WithFloatStackSize(n int) VMOption  { return withFloatStackSize(n) }
func WithDataSpaceSize(n int) VMOption   { return withDataSpaceSize(n) }

func withDataStackSize(n int) VMOption {
	return optionFunc(func(vm *VM) { vm.data = newStack(dataStackKind, n) })
}

func withReturnStackSize(n int) VMOption {
	return optionFunc(func(vm *VM) { vm.ret = newStack(returnStackKind, n) })
}

func withFloatStackSize(n int) VMOption {
	return optionFunc(func(vm *VM) {
		vm.float = newStack(floatStackKind, n)
		vm.hasFloat = true
	})
}

func withDataSpaceSize(n int) VMOption {
	return optionFunc(func(vm *VM) { vm.ds = newDataSpace(uint(n)) })
}

// WithBlockFile opens (and exclusively locks, falling back to $HOME on
// contention) the 1024-byte-record block file backing BLOCK/BUFFER/LOAD
// (spec.md S6).
func WithBlockFile(path string) VMOption {
	return optionFunc(func(vm *VM) {
		f, err := openBlockFile(path)
		if err != nil {
			throwMsg(throwBlockBad, "%v", err)
		}
		vm.blk = &blockBuffer{file: f}
		vm.closers = append(vm.closers, f)
	})
}

// WithStartupFile schedules name to be INCLUDED by New, once bootstrap has
// built the dictionary and before Run reads the configured input source
// (spec.md S6's startup loader, an external collaborator per spec.md S1).
func WithStartupFile(name string) VMOption {
	return optionFunc(func(vm *VM) {
		if name != "" {
			vm.startupFile = name
		}
	})
}

// WithArgs stores args as the VM's argv. No Forth word reads argv, so the
// arguments are not visible to Forth code.
func WithArgs(args []string) VMOption {
	return optionFunc(func(vm *VM) { vm.argv = args })
}

func WithLogf(logfn func(mess string, args ...interface{})) VMOption {
	return optionFunc(func(vm *VM) { vm.logfn = logfn })
}

// WithSearchPath sets the directories INCLUDED searches after a bare
// relative name fails to open directly -- normally derived from
// POST4_PATH by main.go, exposed here so tests can set it directly.
func WithSearchPath(dirs []string) VMOption {
	return optionFunc(func(vm *VM) { vm.searchPath = dirs })
}
