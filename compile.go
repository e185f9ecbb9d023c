package main

// compileBranch emits opcode followed by a zero placeholder displacement
// cell and returns the placeholder's address, for later patching by
// patchBranch -- spec.md S4.4's "displacement... added to the address of
// the operand cell" convention, applied uniformly by every control word
// below.
func (vm *VM) compileBranch(opcode xt) uint {
	vm.appendCell(opcode)
	addr := vm.ds.here
	vm.appendCell(0)
	return addr
}

func (vm *VM) patchBranch(addr uint) {
	target := vm.ds.here
	vm.ds.writeCell(addr, Cell(int64(target)-int64(addr)))
}

// compileBackBranch emits opcode with a displacement computed immediately,
// targeting addr (a previously recorded, already-passed address) -- used
// by UNTIL/AGAIN/REPEAT/LOOP, whose target is known at compile time.
func (vm *VM) compileBackBranch(opcode xt, addr uint) {
	vm.appendCell(opcode)
	operand := vm.ds.here
	vm.appendCell(Cell(int64(addr) - int64(operand)))
}

func (vm *VM) xtNamed(name string) xt {
	w := vm.findName(name)
	if w == nil {
		panic("post4go: bootstrap word " + name + " missing")
	}
	return vm.xtOf(w)
}

// beginColonDef implements the shared prologue of ":" and ":NONAME": push
// the control sentinel, create a HIDDEN word with code handle enter, and
// enter compile state (spec.md S4.5).
func (vm *VM) beginColonDef(name string) *word {
	vm.data.push(packLengths(vm.ret.length(), vm.data.length()))
	w := vm.wordCreate(name, codeEnter, nil)
	w.setHidden(true)
	vm.state = stateCompile
	vm.logf(">", "begin %q", name)
	return w
}

// endColonDef implements ";": verify the control sentinel balances, append
// EXIT, clear HIDDEN, and return to interpret state.
func (vm *VM) endColonDef() {
	sentinel := vm.data.pop()
	rsLen, dsLen := unpackLengths(sentinel)
	if rsLen != vm.ret.length() || dsLen != vm.data.length() {
		throwValue(throwBadControl)
	}
	vm.appendCell(vm.xtNamed("EXIT"))
	vm.logf(">", "end %q", vm.dictHead.name)
	vm.dictHead.setHidden(false)
	vm.state = stateInterpret
}

// abandonCompile implements spec.md S4.5 "Abort during compile": unlink the
// half-built HIDDEN head, rewind here to its data base, and return to
// interpret state. Called from the REPL's landing pad.
func (vm *VM) abandonCompile() {
	if vm.dictHead == nil || !vm.dictHead.hidden() {
		return
	}
	w := vm.unlinkHead()
	vm.ds.here = w.dataBase
	vm.state = stateInterpret
}

func (vm *VM) addPrimitive(name string, immediate, compileOnly bool, fn primFunc) *word {
	w := vm.wordCreate(name, codePrim, fn)
	w.setImmediate(immediate)
	w.setCompileOnly(compileOnly)
	return w
}

// addCodeWord registers a word whose behavior is one of the inner
// interpreter's direct code handles rather than a Go closure -- used for
// the handful of opcodes (BRANCH, BRANCHZ, EXIT, EXECUTE) that compiled
// bodies must be able to name via an ordinary xt.
func (vm *VM) addCodeWord(name string, c code) *word {
	return vm.wordCreate(name, c, nil)
}

// installCompileWords registers ":", ";", ":NONAME", "CREATE", "DOES>",
// "MARKER", "IMMEDIATE", "POSTPONE", "'", "[']", "LITERAL" and the
// control-flow family (IF/THEN/ELSE, BEGIN/UNTIL/AGAIN/WHILE/REPEAT,
// DO/LOOP/+LOOP/I/J) -- spec.md S4.5, S4.8.
func (vm *VM) installCompileWords() {
	vm.addCodeWord("EXIT", codeExit)
	vm.addCodeWord("EXECUTE", codeExecute)
	vm.addCodeWord("(BRANCH)", codeBranch)
	vm.addCodeWord("(BRANCHZ)", codeBranchZ)
	vm.addCodeWord("(LIT)", codeLit)

	vm.addPrimitive(":", false, false, func(vm *VM, ip *uint) {
		name := string(vm.parseName())
		vm.beginColonDef(name)
	})

	vm.addPrimitive(";", true, true, func(vm *VM, ip *uint) {
		vm.endColonDef()
	})

	vm.addPrimitive(":NONAME", false, false, func(vm *VM, ip *uint) {
		w := vm.beginColonDef("")
		vm.data.push(vm.xtOf(w))
	})

	vm.addPrimitive("IMMEDIATE", false, false, func(vm *VM, ip *uint) {
		if vm.dictHead != nil {
			vm.dictHead.setImmediate(true)
		}
	})

	vm.addPrimitive("CREATE", false, false, func(vm *VM, ip *uint) {
		name := string(vm.parseName())
		w := vm.wordCreate(name, codeDataField, nil)
		vm.appendCellToWord(w, 0) // reserved DOES> continuation slot
		w.setCreated(true)
		vm.lastCreated = w
	})

	vm.addPrimitive("DOES>", true, true, func(vm *VM, ip *uint) {
		// Compiled inside the defining word: at run time of the defining
		// word, this token retargets the most recently CREATEd word and
		// hands control to the code after DOES> by exiting the defining
		// word (spec.md S4.8).
		vm.appendCell(vm.xtNamed("(DOES>)"))
	})

	vm.addPrimitive("(DOES>)", false, true, func(vm *VM, ip *uint) {
		target := vm.lastCreated
		if target == nil || !target.created() {
			throwValue(throwNotCreated)
		}
		target.code = codeDoDoes
		vm.ds.writeCell(target.dataBase, addrCell(*ip))
		*ip = vm.ret.pop().addr()
	})

	vm.addPrimitive("MARKER", false, false, func(vm *VM, ip *uint) {
		name := string(vm.parseName())
		savedHead := vm.dictHead
		savedHere := vm.ds.here
		w := vm.wordCreate(name, codePrim, nil)
		w.prim = func(vm *VM, ip *uint) {
			vm.dictHead = savedHead
			vm.ds.here = savedHere
			for i, ww := range vm.words {
				if ww != nil && ww.dataBase >= savedHere && ww != w {
					vm.words[i] = nil
				}
			}
		}
	})

	vm.addPrimitive("FORGET", false, false, func(vm *VM, ip *uint) {
		vm.parseName()
		throwValue(throwInvalidForget)
	})

	vm.addPrimitive("'", false, false, func(vm *VM, ip *uint) {
		name := string(vm.parseName())
		w := vm.findName(name)
		if w == nil {
			throwValue(throwUndefined)
		}
		vm.data.push(vm.xtOf(w))
	})

	vm.addPrimitive("[']", true, true, func(vm *VM, ip *uint) {
		name := string(vm.parseName())
		w := vm.findName(name)
		if w == nil {
			throwValue(throwUndefined)
		}
		vm.appendCell(vm.xtNamed("(LIT)"))
		vm.appendCell(vm.xtOf(w))
	})

	vm.addPrimitive("LITERAL", true, true, func(vm *VM, ip *uint) {
		vm.appendCell(vm.xtNamed("(LIT)"))
		vm.appendCell(vm.data.pop())
	})

	vm.addPrimitive("POSTPONE", true, true, func(vm *VM, ip *uint) {
		name := string(vm.parseName())
		w := vm.findName(name)
		if w == nil {
			throwValue(throwUndefined)
		}
		if w.immediate() {
			vm.appendCell(vm.xtOf(w))
		} else {
			vm.appendCell(vm.xtNamed("(LIT)"))
			vm.appendCell(vm.xtOf(w))
			vm.appendCell(vm.xtNamed("EXECUTE"))
		}
	})

	// --- control flow -----------------------------------------------

	vm.addPrimitive("IF", true, true, func(vm *VM, ip *uint) {
		addr := vm.compileBranch(vm.xtNamed("(BRANCHZ)"))
		vm.data.push(addrCell(addr))
	})

	vm.addPrimitive("THEN", true, true, func(vm *VM, ip *uint) {
		addr := vm.data.pop().addr()
		vm.patchBranch(addr)
	})

	vm.addPrimitive("ELSE", true, true, func(vm *VM, ip *uint) {
		ifAddr := vm.data.pop().addr()
		elseAddr := vm.compileBranch(vm.xtNamed("(BRANCH)"))
		vm.patchBranch(ifAddr)
		vm.data.push(addrCell(elseAddr))
	})

	vm.addPrimitive("BEGIN", true, true, func(vm *VM, ip *uint) {
		vm.data.push(addrCell(vm.ds.here))
	})

	vm.addPrimitive("UNTIL", true, true, func(vm *VM, ip *uint) {
		addr := vm.data.pop().addr()
		vm.compileBackBranch(vm.xtNamed("(BRANCHZ)"), addr)
	})

	vm.addPrimitive("AGAIN", true, true, func(vm *VM, ip *uint) {
		addr := vm.data.pop().addr()
		vm.compileBackBranch(vm.xtNamed("(BRANCH)"), addr)
	})

	vm.addPrimitive("WHILE", true, true, func(vm *VM, ip *uint) {
		addr := vm.compileBranch(vm.xtNamed("(BRANCHZ)"))
		vm.data.push(addrCell(addr))
	})

	vm.addPrimitive("REPEAT", true, true, func(vm *VM, ip *uint) {
		whileAddr := vm.data.pop().addr()
		beginAddr := vm.data.pop().addr()
		vm.compileBackBranch(vm.xtNamed("(BRANCH)"), beginAddr)
		vm.patchBranch(whileAddr)
	})

	vm.addPrimitive("DO", true, true, func(vm *VM, ip *uint) {
		vm.appendCell(vm.xtNamed("(DO)"))
		vm.data.push(addrCell(vm.ds.here))
	})

	vm.addPrimitive("LOOP", true, true, func(vm *VM, ip *uint) {
		loopStart := vm.data.pop().addr()
		vm.appendCell(vm.xtNamed("(LOOP)"))
		vm.compileBackBranch(vm.xtNamed("(BRANCHZ)"), loopStart)
	})

	vm.addPrimitive("+LOOP", true, true, func(vm *VM, ip *uint) {
		loopStart := vm.data.pop().addr()
		vm.appendCell(vm.xtNamed("(+LOOP)"))
		vm.compileBackBranch(vm.xtNamed("(BRANCHZ)"), loopStart)
	})

	vm.addPrimitive("(DO)", false, true, func(vm *VM, ip *uint) {
		index := vm.data.pop()
		limit := vm.data.pop()
		vm.ret.push(limit)
		vm.ret.push(index)
	})

	vm.addPrimitive("(LOOP)", false, true, primLoopInc)
	vm.addPrimitive("(+LOOP)", false, true, primPlusLoopInc)

	vm.addPrimitive("I", false, true, func(vm *VM, ip *uint) {
		vm.data.push(vm.ret.top1())
	})

	vm.addPrimitive("J", false, true, func(vm *VM, ip *uint) {
		vm.data.push(vm.ret.pick(2))
	})
}

// appendCellToWord allots and writes one cell as part of the word w's own
// payload (used by CREATE, before the word becomes the dictionary head --
// w *is* the head at this point, so dataLen tracking is still correct).
func (vm *VM) appendCellToWord(w *word, c Cell) {
	vm.ds.align()
	addr := vm.ds.allot(cellSize, w.dataBase)
	vm.ds.writeCell(addr, c)
	w.dataLen += cellSize
}

func primLoopInc(vm *VM, ip *uint) {
	index := vm.ret.pop()
	limit := vm.ret.pop()
	index++
	if index < limit {
		vm.ret.push(limit)
		vm.ret.push(index)
		vm.data.push(0)
	} else {
		vm.data.push(Cell(-1))
	}
}

func primPlusLoopInc(vm *VM, ip *uint) {
	step := vm.data.pop()
	index := vm.ret.pop()
	limit := vm.ret.pop()
	index += step
	done := (step >= 0 && index >= limit) || (step < 0 && index <= limit)
	if !done {
		vm.ret.push(limit)
		vm.ret.push(index)
		vm.data.push(0)
	} else {
		vm.data.push(Cell(-1))
	}
}
