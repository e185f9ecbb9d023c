package main

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// installSignals starts forwarding SIGINT, SIGFPE and SIGSEGV into throw
// codes the REPL loop polls for between tokens (runOnce's checkSignal).
// The goroutine below closes over vm directly -- no package-level VM
// pointer is needed since each VM owns its own channel and goroutine.
// Catching SIGFPE/SIGSEGV this way only sees faults raised explicitly
// (e.g. via raise(2) from a linked C library); Go's own runtime handles
// its internal ones before they ever reach here, so in practice this VM
// only ever observes SIGINT -- the other two are wired for parity with
// post4.c's signal table (SPEC_FULL.md S2).
func (vm *VM) installSignals() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGINT, unix.SIGFPE, unix.SIGSEGV)
	go func() {
		for sig := range ch {
			switch sig {
			case unix.SIGINT:
				vm.raiseSignal(throwSigInt)
			case unix.SIGFPE:
				vm.raiseSignal(throwSigFPE)
			case unix.SIGSEGV:
				vm.raiseSignal(throwSigSegv)
			}
		}
	}()
	return ch
}

func (vm *VM) stopSignals(ch chan os.Signal) {
	signal.Stop(ch)
	close(ch)
}

func (vm *VM) raiseSignal(code throwCode) {
	select {
	case vm.sigThrow <- code:
	default:
	}
}

// checkSignal is polled once per REPL turn (spec.md S7's asynchronous
// delivery is modeled as synchronous-at-the-next-safe-point rather than
// preempting a running primitive mid-instruction).
func (vm *VM) checkSignal() {
	select {
	case code := <-vm.sigThrow:
		throwValue(code)
	default:
	}
}
