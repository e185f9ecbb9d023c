// Package golden replays whole interactive sessions against golden
// transcript fixtures. Adapted from the shape of the teacher's
// scripts/gen_vm_expects.go (walk a fixture directory, fan out one
// goroutine per fixture through golang.org/x/sync/errgroup, join errors
// through golang.org/x/net/context) -- that script regenerates expected
// output for its own generated tests; this package instead compares a
// live run's output against an already-recorded .golden file, used by
// outer_test.go's TestScripts. cmd/gengolden is the tool that (re)writes
// the .golden files this package reads.
package golden

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

// Fixture is one golden session: Input fed to a fresh VM, Want the exact
// transcript it must produce.
type Fixture struct {
	Name  string
	Input string
	Want  string
}

// Load reads every "name.input" file in dir with a matching "name.golden"
// sibling into a Fixture.
func Load(dir string) ([]Fixture, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.input"))
	if err != nil {
		return nil, err
	}
	fixtures := make([]Fixture, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".input")
		in, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		want, err := os.ReadFile(filepath.Join(dir, name+".golden"))
		if err != nil {
			return nil, fmt.Errorf("%s: missing golden fixture: %w", name, err)
		}
		fixtures = append(fixtures, Fixture{Name: name, Input: string(in), Want: string(want)})
	}
	return fixtures, nil
}

// RunAll loads every fixture in dir and replays it concurrently through
// run, which must drive one interactive session to completion and return
// its full transcript. The first mismatch or run error cancels ctx for
// the rest, via errgroup.WithContext, same as the teacher's generator
// does for its own per-fixture goroutines.
func RunAll(ctx context.Context, dir string, run func(ctx context.Context, input string) (string, error)) error {
	fixtures, err := Load(dir)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, fx := range fixtures {
		fx := fx
		g.Go(func() error {
			got, err := run(ctx, fx.Input)
			if err != nil {
				return fmt.Errorf("%s: %w", fx.Name, err)
			}
			if got != fx.Want {
				return fmt.Errorf("%s: output mismatch\n got: %q\nwant: %q", fx.Name, got, fx.Want)
			}
			return nil
		})
	}
	return g.Wait()
}
