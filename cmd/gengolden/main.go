// gengolden regenerates testdata/golden/*.golden by piping each *.input
// fixture through a freshly run post4go binary, mirroring the teacher's
// scripts/gen_vm_expects.go's own exec.CommandContext-piping idiom. It
// shells out rather than importing the VM directly because, like the
// teacher, this module keeps its VM type in package main at the repo
// root with no library split a sibling binary could import.
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

func main() {
	dir := "testdata/golden"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.input"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	for _, m := range matches {
		m := m
		g.Go(func() error { return regenerate(ctx, m) })
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func regenerate(ctx context.Context, inputPath string) error {
	in, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "go", "run", "github.com/post4go/post4go")
	cmd.Stdin = bytes.NewReader(in)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	goldenPath := inputPath[:len(inputPath)-len(".input")] + ".golden"
	return os.WriteFile(goldenPath, out.Bytes(), 0o644)
}
