package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/post4go/post4go/internal/golden"
)

// runScript drives a VM over the given input string and returns everything
// written to its output, following the end-to-end scenarios of spec.md S8.
func runScript(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	vm := New(
		WithInput(strings.NewReader(src)),
		WithOutput(&out),
	)
	defer vm.Close()
	err := vm.Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestScriptScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"add-dot", "1 2 + .\n", "3 "},
		{"define-sqr", ": SQR DUP * ; 7 SQR .\n", "49 "},
		{"create-does", `: CONSTANT CREATE , DOES> @ ; 377 CONSTANT MONACO MONACO .` + "\n", "377 "},
		{"radix-prefixes", "$FF #10 %1010 + + .\n", "275 "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := runScript(t, c.src)
			assert.Contains(t, got, c.want)
		})
	}
}

func TestMarkerUndefinesWord(t *testing.T) {
	got := runScript(t, "MARKER FOO : BAR 1 ; BAR . FOO BAR\n")
	assert.Contains(t, got, "1 ", "BAR should run once before FOO removes it")
	assert.Contains(t, got, throwUndefined.String(), "second BAR must be undefined after FOO rewinds the dictionary")
}

func TestBadControlUnbalancedIf(t *testing.T) {
	got := runScript(t, ": BAD 1 IF ;\n")
	assert.Contains(t, got, throwBadControl.String())
}

func TestDoLoopPrintsIndex(t *testing.T) {
	got := runScript(t, "0 1 0 DO I . LOOP\n")
	assert.Contains(t, got, "0 ")
}

func TestUndefinedWordIsReported(t *testing.T) {
	got := runScript(t, "NOSUCHWORD\n")
	assert.Contains(t, got, "NOSUCHWORD")
	assert.Contains(t, got, throwUndefined.String())
}

func TestSeeDecompilesCreatedDoesWord(t *testing.T) {
	got := runScript(t, ": CONSTANT CREATE , DOES> @ ; 377 CONSTANT MONACO SEE MONACO\n")
	assert.Contains(t, got, "CONSTANT MONACO", "SEE should trace a DOES>-retargeted word back to its defining colon word")
}

func TestSeeDecompilesColonWord(t *testing.T) {
	got := runScript(t, ": SQUARE DUP * ; SEE SQUARE\n")
	assert.Contains(t, got, ": SQUARE")
	assert.Contains(t, got, "DUP")
	assert.Contains(t, got, ";")
}

func TestCatchOfNonThrowingWordPushesZero(t *testing.T) {
	got := runScript(t, ": ADD1 1+ ; 41 ' ADD1 CATCH . .\n")
	assert.Contains(t, got, "0 42 ")
}

func TestThrowCaughtByCatchLeavesCodeOnStack(t *testing.T) {
	got := runScript(t, ": BOOM -42 THROW ; ' BOOM CATCH .\n")
	assert.Contains(t, got, "-42 ")
}

func TestThrowUncaughtIsReported(t *testing.T) {
	got := runScript(t, "-42 THROW\n")
	assert.Contains(t, got, throwCode(-42).String())
}

func TestHeapAllocateFreeResize(t *testing.T) {
	got := runScript(t, `
		10 ALLOCATE THROW      ( a )
		DUP 42 SWAP !          ( a )
		DUP @ .                ( a )
		20 RESIZE THROW        ( a2 )
		DUP @ .                ( a2 -- resize must preserve contents )
		FREE THROW
	`)
	assert.Contains(t, got, "42 42")
}

func TestHeapFreeBadAddressReportsAllocateError(t *testing.T) {
	got := runScript(t, "1 FREE THROW\n")
	assert.Contains(t, got, throwAllocate.String())
}

func TestBlockWordsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	blockPath := dir + "/blocks.dat"

	var out bytes.Buffer
	vm := New(
		WithInput(strings.NewReader("1 BLOCK 42 OVER ! UPDATE FLUSH\n")),
		WithOutput(&out),
		WithBlockFile(blockPath),
	)
	err := vm.Run(context.Background())
	vm.Close()
	require.NoError(t, err)

	var out2 bytes.Buffer
	vm2 := New(
		WithInput(strings.NewReader("1 BLOCK @ .\n")),
		WithOutput(&out2),
		WithBlockFile(blockPath),
	)
	defer vm2.Close()
	err = vm2.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out2.String(), "42 ", "the block written by the first VM must be readable by a second VM over the same file")
}

func TestEvaluateRunsInlineSource(t *testing.T) {
	got := runScript(t, `S" 3 4 + ." EVALUATE` + "\n")
	assert.Contains(t, got, "7")
}

func TestIncludedLoadsFileAndDefinesWords(t *testing.T) {
	got := runScript(t, `S" lib/core.fs" INCLUDED ANSWER . 6 SQUARE .`+"\n")
	assert.Contains(t, got, "loaded")
	assert.Contains(t, got, "42 ")
	assert.Contains(t, got, "36 ")
}

// TestDoesRedefinitionDoesNotAlterEarlierCreatedWords checks spec.md S8's
// invariant: a CREATEd word's behavior is pinned to the (DOES>) body address
// current at CREATE time. Redefining the defining word afterwards only
// changes what *future* CREATEd words do.
func TestDoesRedefinitionDoesNotAlterEarlierCreatedWords(t *testing.T) {
	got := runScript(t, `
		: CONSTANT CREATE , DOES> @ ;
		111 CONSTANT OLD
		: CONSTANT CREATE , DOES> @ 1+ ;
		222 CONSTANT NEW
		OLD . NEW .
	`)
	assert.Contains(t, got, "111 ")
	assert.Contains(t, got, "223 ")
}

// TestScripts replays testdata/golden's recorded sessions against a live VM,
// the way the teacher's own fixture-replay tooling does, fanning the
// fixtures out concurrently via internal/golden. cmd/gengolden is what
// (re)writes the .golden files this reads.
func TestScripts(t *testing.T) {
	err := golden.RunAll(context.Background(), "testdata/golden", func(ctx context.Context, input string) (string, error) {
		var out bytes.Buffer
		vm := New(
			WithInput(strings.NewReader(input)),
			WithOutput(&out),
		)
		defer vm.Close()
		if err := vm.Run(ctx); err != nil {
			return "", err
		}
		return out.String(), nil
	})
	require.NoError(t, err)
}
