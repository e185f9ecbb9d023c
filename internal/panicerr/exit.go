package panicerr

import (
	"errors"
	"fmt"
)

// recoverExitError only fires on runtime.Goexit (e.g. a misplaced t.FailNow
// deep in a primitive under test), since a normal return or a panic already
// sent to errch first and this defer's select falls through to default.
func recoverExitError(name string, errch chan<- error) {
	select {
	case errch <- exitError(name):
	default:
		// happy path (or a panic) already sent; nothing to do
	}
}

type exitError string

func (name exitError) Error() string {
	if name == "" {
		return "runtime.Goexit called"
	}
	return fmt.Sprintf("%v called runtime.Goexit", string(name))
}

// IsExit returns true if err indicates a recovered goroutine exit.
func IsExit(err error) bool {
	var xe exitError
	return errors.As(err, &xe)
}
