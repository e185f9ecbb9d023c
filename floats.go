package main

import "strconv"

// installFloatWords registers the handful of floating-point wrappers
// spec.md S1 leaves unspecified ("the specific set of floating-point
// operators... they are straight wrappers") -- just enough to exercise the
// float stack end to end. Every word throws bad-base if the VM was built
// without WithFloatStackSize.
func (vm *VM) installFloatWords() {
	f := vm.float

	guard := func() {
		if !vm.hasFloat {
			throwValue(throwBadBase)
		}
	}

	fbin := func(name string, fn func(a, b float64) float64) {
		vm.addPrimitive(name, false, false, func(vm *VM, ip *uint) {
			guard()
			b := f.pop().f64()
			a := f.pop().f64()
			f.push(cellFromFloat(fn(a, b)))
		})
	}
	fcmp := func(name string, fn func(a, b float64) bool) {
		vm.addPrimitive(name, false, false, func(vm *VM, ip *uint) {
			guard()
			b := f.pop().f64()
			a := f.pop().f64()
			vm.data.push(boolCell(fn(a, b)))
		})
	}

	fbin("F+", func(a, b float64) float64 { return a + b })
	fbin("F-", func(a, b float64) float64 { return a - b })
	fbin("F*", func(a, b float64) float64 { return a * b })
	fbin("F/", func(a, b float64) float64 {
		if b == 0 {
			throwValue(throwDivZero)
		}
		return a / b
	})
	fcmp("F=", func(a, b float64) bool { return a == b })
	fcmp("F<", func(a, b float64) bool { return a < b })
	fcmp("F>", func(a, b float64) bool { return a > b })

	vm.addPrimitive("FNEGATE", false, false, func(vm *VM, ip *uint) {
		guard()
		f.push(cellFromFloat(-f.pop().f64()))
	})
	vm.addPrimitive("FDUP", false, false, func(vm *VM, ip *uint) { guard(); f.push(f.top1()) })
	vm.addPrimitive("FDROP", false, false, func(vm *VM, ip *uint) { guard(); f.pop() })
	vm.addPrimitive("FSWAP", false, false, func(vm *VM, ip *uint) {
		guard()
		b := f.pop()
		a := f.pop()
		f.push(b)
		f.push(a)
	})
	vm.addPrimitive("FOVER", false, false, func(vm *VM, ip *uint) { guard(); f.push(f.pick(1)) })

	vm.addPrimitive("F0=", false, false, func(vm *VM, ip *uint) {
		guard()
		vm.data.push(boolCell(f.pop().f64() == 0))
	})
	vm.addPrimitive("F0<", false, false, func(vm *VM, ip *uint) {
		guard()
		vm.data.push(boolCell(f.pop().f64() < 0))
	})

	// >FLOAT ( c-addr u -- r true | false ) parses a string into a float,
	// the float-stack analog of the numeric parser's float fallback.
	vm.addPrimitive(">FLOAT", false, false, func(vm *VM, ip *uint) {
		guard()
		n := int(vm.data.pop())
		a := vm.data.pop().addr()
		v, err := strconv.ParseFloat(string(vm.ds.bytes(a, uint(n))), 64)
		if err != nil {
			vm.data.push(boolCell(false))
			return
		}
		f.push(cellFromFloat(v))
		vm.data.push(boolCell(true))
	})

	vm.addPrimitive("F.", false, false, func(vm *VM, ip *uint) {
		guard()
		vm.writeOut(strconv.FormatFloat(f.pop().f64(), 'g', -1, 64) + " ")
	})

	vm.addPrimitive("FDEPTH", false, false, func(vm *VM, ip *uint) {
		guard()
		vm.data.push(Cell(f.length()))
	})
}
