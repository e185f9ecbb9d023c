package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/post4go/post4go/internal/logio"
	"github.com/spf13/pflag"
)

func main() {
	ctx := context.Background()

	var (
		timeout     time.Duration
		trace       bool
		dataStack   int
		returnStack int
		floatStack  int
		dataSpaceKB int
		blockFile   string
		startupFile string
	)
	pflag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	pflag.BoolVar(&trace, "trace", false, "enable trace logging")
	pflag.IntVarP(&dataStack, "data-stack", "d", defaultDataStack, "data stack depth, in cells")
	pflag.IntVarP(&returnStack, "return-stack", "r", defaultReturnStack, "return stack depth, in cells")
	pflag.IntVarP(&floatStack, "float-stack", "F", 0, "float stack depth, in cells (0 disables the float stack)")
	pflag.IntVarP(&dataSpaceKB, "mem", "m", defaultDataSpace/1024, "data-space size, in KB")
	pflag.StringVarP(&blockFile, "blocks", "b", "", "path to the block file")
	pflag.StringVarP(&startupFile, "source", "f", "", "path to a startup Forth file to INCLUDE before reading stdin")
	pflag.Parse()

	opts := []VMOption{
		WithInput(os.Stdin),
		WithOutput(os.Stdout),
		WithDataStackSize(dataStack),
		WithReturnStackSize(returnStack),
		WithDataSpaceSize(dataSpaceKB * 1024),
		WithArgs(pflag.Args()),
	}
	if floatStack > 0 {
		opts = append(opts, WithFloatStackSize(floatStack))
	}
	if blockFile != "" {
		opts = append(opts, WithBlockFile(blockFile))
	}
	if startupFile != "" {
		opts = append(opts, WithStartupFile(startupFile))
	}
	if path := os.Getenv("POST4_PATH"); path != "" {
		opts = append(opts, WithSearchPath(strings.Split(path, ":")))
	}
	if trace {
		logger := &logio.Logger{}
		logger.SetOutput(os.Stderr)
		opts = append(opts, WithLogf(logger.Leveledf("TRACE")))
	}

	vm := New(opts...)
	defer vm.Close()

	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := vm.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
		os.Exit(1)
	}
}
