// Package termios wraps golang.org/x/term's raw-mode toggle behind a
// restore handle, so a caller can enter raw mode once and defer the
// decision about when to leave it again.
package termios

import "golang.org/x/term"

// Raw is an entered raw-mode session on a file descriptor. The zero value
// is not usable; construct with Enter.
type Raw struct {
	fd    int
	state *term.State
}

// Enter switches fd into raw (non-canonical, non-echoing) mode and returns
// a handle that can restore it later. Enter on a non-terminal fd is a
// harmless no-op: it returns a nil *Raw and a nil error.
func Enter(fd int) (*Raw, error) {
	if !term.IsTerminal(fd) {
		return nil, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &Raw{fd: fd, state: state}, nil
}

// Restore returns the terminal to its prior mode. Safe to call on a nil
// receiver or an already-restored Raw.
func (r *Raw) Restore() error {
	if r == nil || r.state == nil {
		return nil
	}
	err := term.Restore(r.fd, r.state)
	r.state = nil
	return err
}
