package main

import (
	"os"

	"github.com/post4go/post4go/internal/termios"
	"golang.org/x/sys/unix"
)

// enterRawMode lazily switches the controlling terminal into raw mode on
// first KEY/KEY? use, and leaves it there until restoreCookedMode is
// called -- the batching spec.md S9's open question (c) invites, in place
// of post4.c's per-call termios flip.
func (vm *VM) enterRawMode() {
	if vm.raw != nil {
		return
	}
	r, err := termios.Enter(int(os.Stdin.Fd()))
	if err != nil {
		throwMsg(throwIOError, "%v", err)
	}
	vm.raw = r
}

// restoreCookedMode undoes enterRawMode. Called from the REPL's prompt
// (runOnce) and from Close, so raw mode never outlives one KEY?-driven
// stretch of interaction.
func (vm *VM) restoreCookedMode() {
	if vm.raw == nil {
		return
	}
	vm.raw.Restore()
	vm.raw = nil
}

func (vm *VM) readKey() rune {
	vm.enterRawMode()
	var buf [1]byte
	n, err := os.Stdin.Read(buf[:])
	if err != nil || n == 0 {
		throwValue(throwIOError)
	}
	return rune(buf[0])
}

func (vm *VM) keyAvailable() bool {
	vm.enterRawMode()
	fds := []unix.PollFd{{Fd: int32(os.Stdin.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	return err == nil && n > 0
}
