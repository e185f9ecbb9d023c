package mem

// IntsDump snapshots an Ints' page layout for test assertions -- the
// bases/sizes/pages triple int_test.go checks against after each Stor.
type IntsDump struct {
	Bases []uint
	Sizes []uint
	Pages [][]int
}

// Dump returns the current page layout; test-only, not used by heap.go.
func (m *Ints) Dump() (d IntsDump) {
	d.Bases = m.bases
	d.Sizes = m.sizes
	d.Pages = m.pages
	return d
}
