package main

import "fmt"

// throwCode is a small negative integer naming an error class, matching the
// ANS Forth THROW/CATCH convention post4.c follows (spec.md S7).
type throwCode int

const (
	throwAbort           throwCode = -1
	throwAbortMsg        throwCode = -2
	throwStackOver       throwCode = -3
	throwStackUnder      throwCode = -4
	throwRetStackOver    throwCode = -5
	throwRetStackUnder   throwCode = -6
	throwFloatStackOver  throwCode = -7
	throwFloatStackUnder throwCode = -8
	throwDivZero         throwCode = -10
	throwUndefined       throwCode = -13
	throwBadBase         throwCode = -14
	throwBadControl      throwCode = -15
	throwCompiling       throwCode = -16
	throwNotCreated      throwCode = -17
	throwAllocate        throwCode = -18
	throwResize          throwCode = -19
	throwFloatFault      throwCode = -20
	throwBlockRead       throwCode = -21
	throwBlockWrite      throwCode = -22
	throwBlockBad        throwCode = -23
	throwIOError         throwCode = -24
	throwQuit            throwCode = -56
	throwSigInt          throwCode = -28
	throwSigFPE          throwCode = -55
	throwSigSegv         throwCode = -29
	throwLoopDepth       throwCode = -32
	throwInvalidForget   throwCode = -41
	throwENOENT          throwCode = -38
)

var throwMessages = map[throwCode]string{
	throwAbort:           "ABORT",
	throwAbortMsg:        "ABORT with message",
	throwStackOver:       "stack overflow",
	throwStackUnder:      "stack underflow",
	throwRetStackOver:    "return stack overflow",
	throwRetStackUnder:   "return stack underflow",
	throwFloatStackOver:  "floating-point stack overflow",
	throwFloatStackUnder: "floating-point stack underflow",
	throwDivZero:         "division by zero",
	throwUndefined:       "undefined word",
	throwBadBase:         "result out of range (bad BASE for FLOAT print)",
	throwBadControl:      "control structure mismatch",
	throwCompiling:       "compiler nesting",
	throwNotCreated:      "not created via CREATE",
	throwAllocate:        "allocate",
	throwResize:          "unable to resize",
	throwFloatFault:      "floating point unidentified fault",
	throwBlockRead:       "block read exception",
	throwBlockWrite:      "block write exception",
	throwBlockBad:        "invalid block number",
	throwIOError:         "i/o exception",
	throwQuit:            "QUIT",
	throwSigInt:          "terminal interrupt",
	throwSigFPE:          "floating point divide by zero",
	throwSigSegv:         "invalid memory address",
	throwLoopDepth:       "LOOP nesting depth exceeded",
	throwInvalidForget:   "invalid FORGET",
	throwENOENT:          "no such file",
}

func (t throwCode) String() string {
	if m, ok := throwMessages[t]; ok {
		return m
	}
	return fmt.Sprintf("throw code %d", int(t))
}

// thrown is the panic value used to implement the non-local exit of
// spec.md S7/S9: the source's setjmp/longjmp becomes Go's panic/recover,
// the same idiom the teacher uses for its own halt (see core.go's
// halt/haltError lineage, adapted here into a typed, catchable value so
// THROW/CATCH can be built on top of the same mechanism as the REPL's own
// landing pad).
type thrown struct {
	code    throwCode
	message string
}

func (t thrown) Error() string {
	if t.message != "" {
		return t.message
	}
	return t.code.String()
}

// byeSignal is BYE's panic value: unlike every throw code, it must
// terminate the process rather than be recovered by the REPL's per-turn
// landing pad, so it deliberately does not implement the same type as
// thrown -- recoverTurn re-panics anything that isn't a thrown, letting
// this propagate all the way out to VM.Run.
type byeSignal struct{}

func (byeSignal) Error() string { return "bye" }

// throwValue raises an arbitrary throw code, as LONGJMP / THROW does.
func throwValue(code throwCode) { panic(thrown{code: code}) }

func throwMsg(code throwCode, format string, args ...interface{}) {
	panic(thrown{code: code, message: fmt.Sprintf(format, args...)})
}

func throwStackOverflow(kind stackKind) {
	switch kind {
	case returnStackKind:
		throwValue(throwRetStackOver)
	case floatStackKind:
		throwValue(throwFloatStackOver)
	default:
		throwValue(throwStackOver)
	}
}

func throwStackUnderflow(kind stackKind) {
	switch kind {
	case returnStackKind:
		throwValue(throwRetStackUnder)
	case floatStackKind:
		throwValue(throwFloatStackUnder)
	default:
		throwValue(throwStackUnder)
	}
}

// recoveryClass names which stacks/state a landing pad resets on catching a
// given throw, per the table in spec.md S7.
type recoveryClass int

const (
	recoverResetData   recoveryClass = 1 << iota // data + float stacks
	recoverResetReturn                           // return stack only
	recoverAbandonDef                            // discard in-progress compile
)

func classifyThrow(code throwCode, compiling bool) recoveryClass {
	var c recoveryClass
	switch code {
	case throwAbort, throwAbortMsg, throwStackOver, throwStackUnder,
		throwFloatStackOver, throwFloatStackUnder:
		c |= recoverResetData
	case throwQuit, throwSigSegv, throwRetStackOver, throwRetStackUnder,
		throwUndefined, throwLoopDepth:
		c |= recoverResetReturn
	}
	if compiling {
		c |= recoverAbandonDef
	}
	return c
}
