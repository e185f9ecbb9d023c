package logio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Logger implements a small leveled logging facility around a plain
// io.Writer. post4go's VM.logf (inner.go) holds one of these, constructed
// by main.go only when -trace is set, and feeds it from three fixed marks
// (">" compile begin/end, "?" a recovered throw, "#" REPL halt) the way
// the teacher's own -debug trace marks its VM's turns.
type Logger struct {
	sync.Mutex
	output io.Writer
	buf    bytes.Buffer
}

// SetOutput sets the logger's output stream.
func (log *Logger) SetOutput(out io.Writer) {
	log.Lock()
	defer log.Unlock()
	log.output = out
}

// Leveledf returns a printf-style function that logs messages tagged with
// the given level/mark, e.g. log.Leveledf("TRACE") for -trace's callback.
func (log *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { log.Printf(level, mess, args...) }
}

// Printf prints a line to the output stream like "level: message...\n".
// A nil output (logger constructed but SetOutput never called) is a no-op.
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	log.Lock()
	defer log.Unlock()
	if log.output == nil {
		return
	}
	if level != "" {
		log.buf.WriteString(level)
		log.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&log.buf, mess, args...)
	} else {
		log.buf.WriteString(mess)
	}
	if b := log.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		log.buf.WriteByte('\n')
	}
	log.buf.WriteTo(log.output)
}
