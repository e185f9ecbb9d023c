package main

import (
	"fmt"
	"strings"

	"github.com/post4go/post4go/internal/runeio"
)

// decompile renders a word's compiled form back into approximate source,
// the way spec.md S4.10 describes for SEE. Colon bodies walk the token
// stream the inner interpreter threads through at run time; CREATEd and
// DOES>-retargeted words have no token stream to walk, so they get a hex
// dump of their data-space payload instead. It does not attempt to recover
// original control-flow keywords (IF/THEN/BEGIN/...); those collapse to
// their compiled primitives, exactly as post4.c's own decompiler prints
// them.
func (vm *VM) decompile(w *word) string {
	switch w.code {
	case codeDataField:
		return vm.decompileCreate(w)
	case codeDoDoes:
		return vm.decompileDoesWord(w)
	case codePrim:
		return fmt.Sprintf("%s ( primitive )", w.name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, ": %s", w.name)

	ip := w.dataBase
	end := w.dataBase + w.dataLen
	for ip < end {
		x := vm.ds.readCell(ip)
		ip += cellSize
		body := vm.wordAt(x)
		if body == nil {
			fmt.Fprintf(&sb, " %d", x)
			continue
		}
		switch {
		case body.code == codeLit:
			v := vm.ds.readCell(ip)
			ip += cellSize
			fmt.Fprintf(&sb, " %d", v)
		case body.code == codeBranch, body.code == codeBranchZ, body.code == codeCall:
			disp := vm.ds.readCell(ip)
			operand := ip
			ip += cellSize
			target := uint(int64(operand) + int64(disp))
			fmt.Fprintf(&sb, " %s [ %d CELLS , ]", body.name, int64(target-operand)/cellSize)
		case body.code == codeExit:
			sb.WriteString(" ;")
		case body.name == "(SLIT)":
			// S"/." compile (SLIT) followed by a length cell and the raw
			// string bytes inline (see compileOrPushString); skip over the
			// payload the same way the inner interpreter does and print the
			// literal instead of the raw bytes as execution tokens.
			n := uint(vm.ds.readCell(ip))
			ip += cellSize
			fmt.Fprintf(&sb, " S\" %s\"", vm.ds.bytes(ip, n))
			ip += n
			if r := ip % cellSize; r != 0 {
				ip += cellSize - r
			}
		default:
			sb.WriteByte(' ')
			sb.WriteString(body.name)
		}
	}
	if w.immediate() {
		sb.WriteString(" IMMEDIATE")
	}
	if w.compileOnly() {
		sb.WriteString(" ( compile-only )")
	}
	return sb.String()
}

// decompileCreate renders a CREATEd word with no DOES> as spec.md S4.10
// requires: the name followed by a hex dump of its data-space payload
// (the reserved DOES> continuation cell at dataBase is not part of it).
func (vm *VM) decompileCreate(w *word) string {
	var sb strings.Builder
	n := w.dataLen - cellSize
	fmt.Fprintf(&sb, "CREATE %s ( size %d )", w.name, n)
	appendHexDump(&sb, vm.ds.bytes(w.dataBase+cellSize, n))
	return sb.String()
}

// decompileDoesWord renders a word retargeted by DOES>. dataBase's cell
// holds the address, inside its defining word's own compiled body, that
// execution resumes at; findEnclosingEnter backward-scans the dictionary
// for the colon word whose body contains that address so SEE can print
// "defining-name new-name" the way spec.md S4.10 asks for, falling back to
// plain CREATE if the defining word was since MARKERed away.
func (vm *VM) decompileDoesWord(w *word) string {
	var sb strings.Builder
	doesIP := vm.ds.readCell(w.dataBase).addr()
	if definer := vm.findEnclosingEnter(doesIP); definer != nil {
		fmt.Fprintf(&sb, "%s %s", definer.name, w.name)
	} else {
		fmt.Fprintf(&sb, "CREATE %s", w.name)
	}
	n := w.dataLen - cellSize
	fmt.Fprintf(&sb, " ( size %d )", n)
	appendHexDump(&sb, vm.ds.bytes(w.dataBase+cellSize, n))
	return sb.String()
}

// findEnclosingEnter walks the dictionary newest-first for the colon word
// whose compiled body spans addr. Redefining a DOES>-defining word doesn't
// retroactively alter earlier CREATEd words (spec.md S8): each one's
// dataBase cell was fixed at (DOES>) time to the defining word's body
// address as it existed then, and this scan only ever reports the word
// whose own [dataBase, dataBase+dataLen) range still covers it.
func (vm *VM) findEnclosingEnter(addr uint) *word {
	for w := vm.dictHead; w != nil; w = w.prev {
		if w.code != codeEnter {
			continue
		}
		if addr >= w.dataBase && addr < w.dataBase+w.dataLen {
			return w
		}
	}
	return nil
}

func appendHexDump(sb *strings.Builder, b []byte) {
	for _, c := range b {
		fmt.Fprintf(sb, " %02x", c)
	}
}

func (vm *VM) installDecompileWords() {
	vm.addPrimitive("SEE", false, false, func(vm *VM, ip *uint) {
		name := string(vm.parseName())
		w := vm.findName(name)
		if w == nil {
			throwValue(throwUndefined)
		}
		vm.writeOut(vm.decompile(w) + "\n")
	})

	vm.addPrimitive("DUMP", false, false, func(vm *VM, ip *uint) {
		n := int(vm.data.pop())
		a := vm.data.pop().addr()
		vm.writeOut(vm.dump(a, n))
	})
}

// dump renders addr/len as a 16-bytes-per-line hex + ASCII gutter, grounded
// on post4.c's p4MemDump (DUMP, spec.md's distillation drops it;
// SPEC_FULL.md S3 brings it back). Unprintable control bytes render in
// their caret form (internal/runeio.CaretForm) rather than p4MemDump's
// bare '.'; other unprintable bytes still render as '.'.
// loadByte's address dispatch means DUMP works the same over data space,
// the heap region, or the live block buffer.
func (vm *VM) dump(a uint, n int) string {
	var sb strings.Builder
	for off := 0; off < n; off += 16 {
		fmt.Fprintf(&sb, "%08x ", a+uint(off))
		row := make([]byte, 0, 16)
		for i := 0; i < 16 && off+i < n; i++ {
			b := vm.loadByte(a + uint(off+i))
			fmt.Fprintf(&sb, " %02x", b)
			if (i+1)%4 == 0 {
				sb.WriteByte(' ')
			}
			row = append(row, b)
		}
		sb.WriteByte(' ')
		for _, b := range row {
			if b >= 0x20 && b < 0x7f {
				sb.WriteByte(b)
			} else if caret := runeio.CaretForm(rune(b)); caret != "" {
				sb.WriteString(caret)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
