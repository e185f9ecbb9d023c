package main

import (
	"fmt"
	"strings"
)

// installPrimitives registers the arithmetic, stack, compare, memory and
// I/O words that spec.md treats as straightforward once the threaded core
// exists -- the bulk of post4.c's primitive table (spec.md S2 budget:
// "Inner interpreter + primitives 45%").
func (vm *VM) installPrimitives() {
	d := vm.data

	bin := func(name string, fn func(a, b Cell) Cell) {
		vm.addPrimitive(name, false, false, func(vm *VM, ip *uint) {
			b := d.pop()
			a := d.pop()
			d.push(fn(a, b))
		})
	}
	un := func(name string, fn func(a Cell) Cell) {
		vm.addPrimitive(name, false, false, func(vm *VM, ip *uint) {
			d.push(fn(d.pop()))
		})
	}

	bin("+", func(a, b Cell) Cell { return a + b })
	bin("-", func(a, b Cell) Cell { return a - b })
	bin("*", func(a, b Cell) Cell { return a * b })
	bin("AND", func(a, b Cell) Cell { return a & b })
	bin("OR", func(a, b Cell) Cell { return a | b })
	bin("XOR", func(a, b Cell) Cell { return a ^ b })
	bin("LSHIFT", func(a, b Cell) Cell { return a << uint(b) })
	bin("RSHIFT", func(a, b Cell) Cell { return Cell(uint64(a) >> uint(b)) })
	un("NEGATE", func(a Cell) Cell { return -a })
	un("INVERT", func(a Cell) Cell { return ^a })
	un("1+", func(a Cell) Cell { return a + 1 })
	un("1-", func(a Cell) Cell { return a - 1 })
	un("2*", func(a Cell) Cell { return a * 2 })
	un("2/", func(a Cell) Cell { return a / 2 })
	un("ABS", func(a Cell) Cell {
		if a < 0 {
			return -a
		}
		return a
	})

	vm.addPrimitive("/", false, false, func(vm *VM, ip *uint) {
		b := d.pop()
		a := d.pop()
		if b == 0 {
			throwValue(throwDivZero)
		}
		d.push(a / b)
	})
	vm.addPrimitive("MOD", false, false, func(vm *VM, ip *uint) {
		b := d.pop()
		a := d.pop()
		if b == 0 {
			throwValue(throwDivZero)
		}
		d.push(a % b)
	})
	vm.addPrimitive("/MOD", false, false, func(vm *VM, ip *uint) {
		b := d.pop()
		a := d.pop()
		if b == 0 {
			throwValue(throwDivZero)
		}
		d.push(a % b)
		d.push(a / b)
	})

	cmp := func(name string, fn func(a, b Cell) bool) {
		vm.addPrimitive(name, false, false, func(vm *VM, ip *uint) {
			b := d.pop()
			a := d.pop()
			d.push(boolCell(fn(a, b)))
		})
	}
	cmp("=", func(a, b Cell) bool { return a == b })
	cmp("<>", func(a, b Cell) bool { return a != b })
	cmp("<", func(a, b Cell) bool { return a < b })
	cmp(">", func(a, b Cell) bool { return a > b })
	cmp("U<", func(a, b Cell) bool { return uint64(a) < uint64(b) })
	cmp("U>", func(a, b Cell) bool { return uint64(a) > uint64(b) })
	un("0=", func(a Cell) Cell { return boolCell(a == 0) })
	un("0<", func(a Cell) Cell { return boolCell(a < 0) })
	un("0>", func(a Cell) Cell { return boolCell(a > 0) })

	// --- stack shuffling ----------------------------------------------

	vm.addPrimitive("DUP", false, false, func(vm *VM, ip *uint) { d.push(d.top1()) })
	vm.addPrimitive("DROP", false, false, func(vm *VM, ip *uint) { d.pop() })
	vm.addPrimitive("SWAP", false, false, func(vm *VM, ip *uint) {
		b := d.pop()
		a := d.pop()
		d.push(b)
		d.push(a)
	})
	vm.addPrimitive("OVER", false, false, func(vm *VM, ip *uint) { d.push(d.pick(1)) })
	vm.addPrimitive("ROT", false, false, func(vm *VM, ip *uint) {
		c := d.pop()
		b := d.pop()
		a := d.pop()
		d.push(b)
		d.push(c)
		d.push(a)
	})
	vm.addPrimitive("-ROT", false, false, func(vm *VM, ip *uint) {
		c := d.pop()
		b := d.pop()
		a := d.pop()
		d.push(c)
		d.push(a)
		d.push(b)
	})
	vm.addPrimitive("NIP", false, false, func(vm *VM, ip *uint) {
		b := d.pop()
		d.pop()
		d.push(b)
	})
	vm.addPrimitive("TUCK", false, false, func(vm *VM, ip *uint) {
		b := d.pop()
		a := d.pop()
		d.push(b)
		d.push(a)
		d.push(b)
	})
	vm.addPrimitive("2DUP", false, false, func(vm *VM, ip *uint) {
		d.push(d.pick(1))
		d.push(d.pick(1))
	})
	vm.addPrimitive("2DROP", false, false, func(vm *VM, ip *uint) { d.drop(2) })
	vm.addPrimitive("2SWAP", false, false, func(vm *VM, ip *uint) {
		d2 := d.pop()
		c := d.pop()
		b := d.pop()
		a := d.pop()
		d.push(c)
		d.push(d2)
		d.push(a)
		d.push(b)
	})
	vm.addPrimitive("2OVER", false, false, func(vm *VM, ip *uint) {
		d.push(d.pick(3))
		d.push(d.pick(3))
	})
	vm.addPrimitive("PICK", false, false, func(vm *VM, ip *uint) {
		n := int(d.pop())
		d.push(d.pick(n))
	})
	vm.addPrimitive("ROLL", false, false, func(vm *VM, ip *uint) {
		n := int(d.pop())
		v := d.pick(n)
		for i := n; i > 0; i-- {
			d.setPick(i, d.pick(i-1))
		}
		d.setPick(0, v)
	})
	vm.addPrimitive("DEPTH", false, false, func(vm *VM, ip *uint) { d.push(Cell(d.length())) })
	vm.addPrimitive(">R", false, false, func(vm *VM, ip *uint) { vm.ret.push(d.pop()) })
	vm.addPrimitive("R>", false, false, func(vm *VM, ip *uint) { d.push(vm.ret.pop()) })
	vm.addPrimitive("R@", false, false, func(vm *VM, ip *uint) { d.push(vm.ret.top1()) })

	// --- memory ---------------------------------------------------------

	vm.addPrimitive("@", false, false, func(vm *VM, ip *uint) {
		d.push(vm.loadCell(d.pop().addr()))
	})
	vm.addPrimitive("!", false, false, func(vm *VM, ip *uint) {
		a := d.pop().addr()
		v := d.pop()
		vm.storeCell(a, v)
	})
	vm.addPrimitive("+!", false, false, func(vm *VM, ip *uint) {
		a := d.pop().addr()
		v := d.pop()
		vm.storeCell(a, vm.loadCell(a)+v)
	})
	vm.addPrimitive("C@", false, false, func(vm *VM, ip *uint) {
		d.push(Cell(vm.loadByte(d.pop().addr())))
	})
	vm.addPrimitive("C!", false, false, func(vm *VM, ip *uint) {
		a := d.pop().addr()
		v := d.pop()
		vm.storeByte(a, byte(v))
	})
	vm.addPrimitive("CELLS", false, false, func(vm *VM, ip *uint) {
		d.push(d.pop() * cellSize)
	})
	vm.addPrimitive("CELL+", false, false, func(vm *VM, ip *uint) {
		d.push(d.pop() + cellSize)
	})
	vm.addPrimitive("CHARS", false, false, func(vm *VM, ip *uint) {})
	vm.addPrimitive("CHAR+", false, false, func(vm *VM, ip *uint) { d.push(d.pop() + 1) })

	vm.addPrimitive("HERE", false, false, func(vm *VM, ip *uint) { d.push(addrCell(vm.ds.here)) })
	vm.addPrimitive("ALLOT", false, false, func(vm *VM, ip *uint) {
		n := int(d.pop())
		vm.ds.allot(n, vm.compilingDataBase())
		vm.growCurrentWord(n)
	})
	vm.addPrimitive(",", false, false, func(vm *VM, ip *uint) { vm.appendCell(d.pop()) })
	vm.addPrimitive("C,", false, false, func(vm *VM, ip *uint) {
		addr := vm.ds.allot(1, vm.compilingDataBase())
		vm.ds.writeByte(addr, byte(d.pop()))
		vm.growCurrentWord(1)
	})
	vm.addPrimitive("ALIGN", false, false, func(vm *VM, ip *uint) { vm.ds.align() })
	vm.addPrimitive(">BODY", false, false, func(vm *VM, ip *uint) {
		w := vm.wordAt(d.pop())
		if w == nil || !w.created() {
			throwValue(throwNotCreated)
		}
		d.push(addrCell(w.dataBase + cellSize))
	})

	// --- control / compiler introspection --------------------------------

	vm.addPrimitive("STATE", false, false, func(vm *VM, ip *uint) {
		d.push(boolCell(vm.state == stateCompile))
	})
	vm.addPrimitive("BASE", false, false, func(vm *VM, ip *uint) { d.push(addrCell(vm.baseAddr)) })
	vm.addPrimitive("DECIMAL", false, false, func(vm *VM, ip *uint) { vm.ds.writeCell(vm.baseAddr, 10) })
	vm.addPrimitive("HEX", false, false, func(vm *VM, ip *uint) { vm.ds.writeCell(vm.baseAddr, 16) })

	vm.addPrimitive("THROW", false, false, func(vm *VM, ip *uint) {
		n := d.pop()
		if n != 0 {
			throwValue(throwCode(n))
		}
	})
	vm.addPrimitive("CATCH", false, false, func(vm *VM, ip *uint) { vm.catch(ip) })
	vm.addPrimitive("ABORT", false, false, func(vm *VM, ip *uint) { throwValue(throwAbort) })
	vm.addPrimitive("QUIT", false, false, func(vm *VM, ip *uint) { throwValue(throwQuit) })
	vm.addPrimitive("BYE", false, false, func(vm *VM, ip *uint) { panic(byeSignal{}) })

	vm.addPrimitive("EVALUATE", false, false, func(vm *VM, ip *uint) { vm.doEvaluate() })
	vm.addPrimitive("INCLUDED", false, false, func(vm *VM, ip *uint) { vm.doIncluded() })

	// --- output -----------------------------------------------------------

	vm.addPrimitive(".", false, false, func(vm *VM, ip *uint) {
		vm.writeOut(formatCell(d.pop(), vm.radix()) + " ")
	})
	vm.addPrimitive("U.", false, false, func(vm *VM, ip *uint) {
		vm.writeOut(formatUCell(d.pop(), vm.radix()) + " ")
	})
	vm.addPrimitive(".S", false, false, func(vm *VM, ip *uint) {
		vals := d.slice()
		var sb strings.Builder
		sb.WriteByte('<')
		sb.WriteString(fmt.Sprint(len(vals)))
		sb.WriteString("> ")
		for _, v := range vals {
			sb.WriteString(formatCell(v, vm.radix()))
			sb.WriteByte(' ')
		}
		vm.writeOut(sb.String())
	})
	vm.addPrimitive("CR", false, false, func(vm *VM, ip *uint) { vm.writeOut("\n") })
	vm.addPrimitive("SPACE", false, false, func(vm *VM, ip *uint) { vm.writeOut(" ") })
	vm.addPrimitive("SPACES", false, false, func(vm *VM, ip *uint) {
		vm.writeOut(strings.Repeat(" ", int(d.pop())))
	})
	vm.addPrimitive("EMIT", false, false, func(vm *VM, ip *uint) { vm.writeRune(rune(d.pop())) })
	vm.addPrimitive("TYPE", false, false, func(vm *VM, ip *uint) {
		n := int(d.pop())
		a := d.pop().addr()
		vm.writeOut(string(vm.ds.bytes(a, uint(n))))
	})

	// (SLIT) is the run-time half of a compiled S"/."  string literal: the
	// length cell and raw bytes follow inline in the instruction stream, the
	// same way (LIT) follows a numeric literal inline (spec.md S4.4/S4.6).
	vm.addPrimitive("(SLIT)", false, true, func(vm *VM, ip *uint) {
		n := vm.ds.readCell(*ip)
		*ip += cellSize
		addr := *ip
		d.push(addrCell(addr))
		d.push(n)
		*ip += uint(n)
		if r := *ip % cellSize; r != 0 {
			*ip += cellSize - r
		}
	})
	vm.addPrimitive("(TYPE)", false, true, func(vm *VM, ip *uint) {
		n := int(d.pop())
		a := d.pop().addr()
		vm.writeOut(string(vm.ds.bytes(a, uint(n))))
	})
	vm.addPrimitive("(TOFLOAT)", false, true, func(vm *VM, ip *uint) {
		vm.float.push(d.pop())
	})

	vm.addPrimitive("S\"", true, false, func(vm *VM, ip *uint) { vm.compileOrPushString('"', true) })
	vm.addPrimitive("S\\\"", true, false, func(vm *VM, ip *uint) { vm.compileOrPushString('"', true) })
	vm.addPrimitive(".\"", true, false, func(vm *VM, ip *uint) { vm.compileOrTypeString('"') })
	vm.addPrimitive("(", true, false, func(vm *VM, ip *uint) { vm.parse(')', false) })
	vm.addPrimitive("\\", true, false, func(vm *VM, ip *uint) {
		if s := vm.curSource(); s != nil {
			s.off = len(s.buf)
		}
	})

	vm.addPrimitive("WORDS", false, false, func(vm *VM, ip *uint) { vm.doWords() })

	vm.addPrimitive("ENVIRONMENT?", false, false, func(vm *VM, ip *uint) { vm.doEnvironmentQuery() })

	vm.addPrimitive("KEY", false, false, func(vm *VM, ip *uint) { d.push(Cell(vm.readKey())) })
	vm.addPrimitive("KEY?", false, false, func(vm *VM, ip *uint) { d.push(boolCell(vm.keyAvailable())) })

	vm.installFloatWords()
	vm.installHeapWords()
	vm.installBlockWords()
	vm.installDecompileWords()
}

// catch installs a fresh landing pad, runs the xt on top of the data
// stack, and pushes a throw code (0 on success) -- user-level exception
// handling layered on the same non-local exit the REPL uses (spec.md S7).
func (vm *VM) catch(ip *uint) {
	x := vm.data.pop()
	dsDepth := vm.data.length()
	rsDepth := vm.ret.length()
	code := vm.protectedCall(x)
	if code != 0 {
		vm.data.drop(vm.data.length() - dsDepth)
		vm.ret.drop(vm.ret.length() - rsDepth)
	}
	vm.data.push(Cell(code))
}

func (vm *VM) protectedCall(x xt) (code throwCode) {
	defer func() {
		if r := recover(); r != nil {
			if t, ok := r.(thrown); ok {
				code = t.code
				return
			}
			panic(r)
		}
	}()
	vm.callWord(x)
	return 0
}
