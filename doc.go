/* Package main implements post4go, a small Forth-2012-flavored interpreter
and compiler.

The VM is built in four layers, one file group per layer:

  - cell.go/stack.go/dataspace.go/dict.go: the machine word (Cell), the
    three stacks (data/return/float), the bump-allocated data space, and
    the linked dictionary of words with their HIDDEN/IMMEDIATE/CREATED/
    COMPILE-ONLY flag bits.

  - inner.go: the indirect-threaded inner interpreter. Every compiled word
    is a sequence of execution tokens threaded through data space;
    execToken dispatches each one on its word's code handle (codeEnter,
    codeLit, codeBranch, ...).

  - outer.go/parse.go/number.go/compile.go: the outer interpreter (the
    token-at-a-time REPL loop), the number parser (decimal/hex/binary
    prefixes plus float fallback), and the colon-definition compiler,
    including CREATE/DOES> and MARKER.

  - primitives.go/heap.go/block.go/floats.go/decompile.go/terminal.go:
    everything built directly on top of those four layers -- arithmetic
    and stack-shuffling words, ALLOCATE/FREE/RESIZE over a paged heap
    region, on-disk BLOCK/BUFFER/UPDATE/FLUSH, the float stack, SEE/DUMP,
    and raw-mode KEY?/KEY.

throw.go and signal.go cut across all of this: THROW/CATCH and SIGINT/
SIGFPE/SIGSEGV delivery both unwind through the same panic/recover-based
non-local exit, landing in outer.go's recoverTurn at the end of each REPL
turn.
*/
package main
