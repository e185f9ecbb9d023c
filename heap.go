package main

import "github.com/post4go/post4go/internal/mem"

// heapBase separates ALLOCATE'd addresses from the fixed data-space arena:
// any address at or above it indexes into the paged heap instead of
// ds.mem. Chosen comfortably above any plausible WithDataSpaceSize so the
// two address ranges never collide.
const heapBase uint = 1 << 40

// heapRegion backs ALLOCATE/FREE/RESIZE with the teacher's paged sparse
// memory (internal/mem.Ints), repurposed one byte per int slot so it can
// stand in for an unbounded arena alongside dataSpace's fixed one. post4.c
// carries ALLOCATE/FREE/RESIZE; this region is also what gives
// internal/mem a home in the new module.
type heapRegion struct {
	ints   mem.Ints
	blocks map[uint]int // live allocation base -> length in bytes
	bump   uint
}

func newHeapRegion() *heapRegion {
	return &heapRegion{blocks: make(map[uint]int), bump: heapBase}
}

func (h *heapRegion) allocate(n int) uint {
	addr := h.bump
	h.bump += uint(n)
	if h.bump%cellSize != 0 {
		h.bump += cellSize - h.bump%cellSize
	}
	h.blocks[addr] = n
	return addr
}

func (h *heapRegion) free(addr uint) bool {
	if _, ok := h.blocks[addr]; !ok {
		return false
	}
	delete(h.blocks, addr)
	return true
}

func (h *heapRegion) resize(addr uint, n int) (uint, bool) {
	old, ok := h.blocks[addr]
	if !ok {
		return 0, false
	}
	newAddr := h.allocate(n)
	keep := old
	if n < keep {
		keep = n
	}
	buf := make([]int, keep)
	h.ints.LoadInto(addr-heapBase, buf)
	h.ints.Stor(newAddr-heapBase, buf...)
	delete(h.blocks, addr)
	return newAddr, true
}

func (h *heapRegion) readByte(addr uint) byte {
	v, _ := h.ints.LoadByte(addr - heapBase)
	return v
}

func (h *heapRegion) writeByte(addr uint, v byte) {
	h.ints.StoreByte(addr-heapBase, v)
}

func (h *heapRegion) readCell(addr uint) Cell {
	buf := make([]int, cellSize)
	h.ints.LoadInto(addr-heapBase, buf)
	var u uint64
	for i := 0; i < cellSize; i++ {
		u |= uint64(byte(buf[i])) << (8 * i)
	}
	return Cell(u)
}

func (h *heapRegion) writeCell(addr uint, c Cell) {
	u := uint64(c)
	vals := make([]int, cellSize)
	for i := 0; i < cellSize; i++ {
		vals[i] = int(byte(u >> (8 * i)))
	}
	h.ints.Stor(addr-heapBase, vals...)
}

// loadByte/storeByte/loadCell/storeCell are the address-space-aware
// entry points @/!/C@/C! route through, dispatching to the heap region for
// addresses ALLOCATE handed out and to the fixed arena otherwise.
func (vm *VM) loadByte(a uint) byte {
	switch {
	case a >= blockBase && a < blockBase+blockSize:
		return vm.blockByteAt(a)
	case a >= heapBase:
		return vm.heap.readByte(a)
	default:
		return vm.ds.readByte(a)
	}
}

func (vm *VM) storeByte(a uint, v byte) {
	switch {
	case a >= blockBase && a < blockBase+blockSize:
		vm.setBlockByteAt(a, v)
	case a >= heapBase:
		vm.heap.writeByte(a, v)
	default:
		vm.ds.writeByte(a, v)
	}
}

func (vm *VM) loadCell(a uint) Cell {
	if a >= blockBase && a < blockBase+blockSize {
		var u uint64
		for i := 0; i < cellSize; i++ {
			u |= uint64(vm.blockByteAt(a+uint(i))) << (8 * i)
		}
		return Cell(u)
	}
	if a >= heapBase {
		return vm.heap.readCell(a)
	}
	return vm.ds.readCell(a)
}

func (vm *VM) storeCell(a uint, c Cell) {
	if a >= blockBase && a < blockBase+blockSize {
		u := uint64(c)
		for i := 0; i < cellSize; i++ {
			vm.setBlockByteAt(a+uint(i), byte(u>>(8*i)))
		}
		return
	}
	if a >= heapBase {
		vm.heap.writeCell(a, c)
		return
	}
	vm.ds.writeCell(a, c)
}

// installHeapWords registers ALLOCATE/FREE/RESIZE with the usual Forth
// ior convention: 0 on success, a throw code otherwise, rather than
// raising a throw directly -- these three are expected to fail softly.
func (vm *VM) installHeapWords() {
	d := vm.data

	vm.addPrimitive("ALLOCATE", false, false, func(vm *VM, ip *uint) {
		n := int(d.pop())
		if n < 0 {
			d.push(0)
			d.push(Cell(throwAllocate))
			return
		}
		d.push(addrCell(vm.heap.allocate(n)))
		d.push(0)
	})

	vm.addPrimitive("FREE", false, false, func(vm *VM, ip *uint) {
		a := d.pop().addr()
		if a < heapBase || !vm.heap.free(a) {
			d.push(Cell(throwAllocate))
			return
		}
		d.push(0)
	})

	vm.addPrimitive("RESIZE", false, false, func(vm *VM, ip *uint) {
		n := int(d.pop())
		a := d.pop().addr()
		newAddr, ok := vm.heap.resize(a, n)
		if !ok {
			d.push(addrCell(a))
			d.push(Cell(throwAllocate))
			return
		}
		d.push(addrCell(newAddr))
		d.push(0)
	})
}
