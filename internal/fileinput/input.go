// Package fileinput names the line a diagnostic belongs to.
//
// The teacher's internal/fileinput carried a whole multi-file Input/Queue
// abstraction for sequencing several readers behind one io.RuneReader; this
// VM already has its own input-source stack (input.go's source/pushSource/
// popSource) that covers EVALUATE/INCLUDED reentrancy, so only the
// name:line location value itself is worth keeping here.
package fileinput

import "fmt"

// Location names a line within a named input stream -- a file path,
// "<stdin>", "<evaluate>" or "<block>" -- for error reporting (spec.md S7's
// diagnostic, S4.9's INCLUDED/EVALUATE).
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%s:%d", loc.Name, loc.Line) }
