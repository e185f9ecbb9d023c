package panicerr

// Recover runs f in a new goroutine wrapped in defer logic to recover any
// abnormal exits or panics as non-nil error returns. api.go's VM.Run calls
// this around the outer interpreter loop so a genuine Go runtime panic deep
// in a primitive (an out-of-range slice index, say) comes back as a
// structured error instead of crashing the whole process -- the VM's own
// thrown{} non-local exits (throw.go) are recovered separately, one layer
// in, by the REPL's own landing pad.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExitError(name, errch)
		defer recoverPanicError(name, errch)
		errch <- f()
	}()
	return <-errch
}
